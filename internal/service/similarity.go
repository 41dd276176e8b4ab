package service

import "math"

// CosineSim usa solo las primeras min(len(a),len(b)) entradas; devuelve 0 si alguna norma es 0.
func CosineSim(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x := finiteOrZero(a[i])
		y := finiteOrZero(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / math.Sqrt(na*nb)
	// Redondeo de punto flotante puede dejarlo apenas fuera de [-1,1].
	return math.Max(-1, math.Min(1, c))
}

// RescaleUnit lleva una similitud de [-1,1] a [0,1] para mostrarla como porcentaje.
func RescaleUnit(c float64) float64 {
	return clamp01((c + 1) / 2)
}
