package siat

import "time"

// Location hora oficial de Bolivia (UTC-4, sin horario de verano).
// Las fechas de emisión se expresan siempre en esta zona, nunca en UTC.
var Location = time.FixedZone("BOT", -4*60*60)

// LocalTime convierte t a hora boliviana truncada a milisegundos.
func LocalTime(t time.Time) time.Time {
	return t.In(Location).Truncate(time.Millisecond)
}

// WallClock reinterpreta la hora civil de t (año a milisegundo) como hora boliviana, sin convertir.
// Sirve para columnas TIMESTAMP sin zona, que el driver devuelve con la hora civil en UTC.
func WallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), Location).
		Truncate(time.Millisecond)
}
