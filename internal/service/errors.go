package service

import "errors"

// Errores de validacion: se devuelven sin efectos secundarios.
var (
	ErrInvalidAnswers  = errors.New("invalid quiz answers")
	ErrSelfSchedule    = errors.New("cannot schedule with yourself")
	ErrPartnerNotFound = errors.New("partner not found")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrWeakPassword    = errors.New("password too short")
)

var (
	// ErrProfileRequired: el usuario debe completar el quiz antes de rankear o agendar.
	ErrProfileRequired = errors.New("complete profiling first")
	// ErrScheduleNotFound cubre tanto "no existe" como "no sos participante".
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)
