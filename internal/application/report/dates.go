package report

import (
	"fmt"
	"time"
)

// arabicMonths nombres de mes usados en la exportación.
var arabicMonths = [...]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// arabicDate formatea t como "d MMMM yyyy" con el mes en árabe, ej: "5 مارس 2024".
func arabicDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), arabicMonths[t.Month()-1], t.Year())
}
