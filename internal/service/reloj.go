package service

import "time"

// Reloj supplies the current instant. Services never call time.Now directly.
type Reloj interface {
	Ahora() time.Time
}

// RelojSistema reads the wall clock in a fixed location, so "today" for
// assignments matches the business timezone.
type RelojSistema struct {
	Loc *time.Location
}

func (r RelojSistema) Ahora() time.Time {
	if r.Loc == nil {
		return time.Now()
	}
	return time.Now().In(r.Loc)
}

// RelojFijo always returns T. Used by tests and replays.
type RelojFijo struct{ T time.Time }

func (r RelojFijo) Ahora() time.Time { return r.T }
