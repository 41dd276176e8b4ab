package domain

type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"` // "concert", "museum", ...
	Tags        []string `json:"tags"`
	Location    string   `json:"location"`
	DurationMin int      `json:"duration_min"`
}
