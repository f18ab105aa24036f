package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"whatsapp-chat-parser/internal/resources"
)

// parseTimestamp собирает метку времени из даты и времени заголовка.
// Даты с "." и "-" всегда записаны как день-месяц-год. Для "/" сначала
// пробуется slashOrder, а если дата вне календаря, то обратный порядок.
func parseTimestamp(date, clock, slashOrder string, loc *time.Location) (time.Time, error) {
	day, month, year, err := parseDate(date, slashOrder)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, second, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), nil
}

func parseDate(date, slashOrder string) (day, month, year int, err error) {
	sep := strings.IndexAny(date, "./-")
	if sep < 0 {
		return 0, 0, 0, fmt.Errorf("no date separator in %q", date)
	}
	parts := strings.Split(date, date[sep:sep+1])
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("mixed date separators in %q", date)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if nums[i], err = strconv.Atoi(p); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid date component %q", p)
		}
	}

	switch len(parts[2]) {
	case 2:
		year = 2000 + nums[2]
	case 4:
		year = nums[2]
	default:
		return 0, 0, 0, fmt.Errorf("invalid year %q", parts[2])
	}

	day, month = nums[0], nums[1]
	if date[sep] == '/' && slashOrder == resources.DateOrderMDY {
		day, month = nums[1], nums[0]
	}
	err = checkDate(day, month, year)
	if err != nil && date[sep] == '/' && checkDate(month, day, year) == nil {
		return month, day, year, nil
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return day, month, year, nil
}

func checkDate(day, month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return fmt.Errorf("day %d out of range for %d-%02d", day, year, month)
	}
	return nil
}

// DetectSlashDateOrder выбирает порядок дня и месяца для дат через "/" по всему
// экспорту. Поле больше 12 однозначно указывает на день. Если свидетельства нет
// или оно противоречиво, остается порядок из строки индикаторов.
func DetectSlashDateOrder(segments []Segment, fallback string) string {
	var dayFirst, monthFirst bool
	for _, seg := range segments {
		parts := strings.Split(seg.Date, "/")
		if len(parts) != 3 {
			continue
		}
		first, err1 := strconv.Atoi(parts[0])
		second, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			continue
		}
		switch {
		case first > 12 && second <= 12:
			dayFirst = true
		case second > 12 && first <= 12:
			monthFirst = true
		}
	}

	switch {
	case dayFirst && !monthFirst:
		return resources.DateOrderDMY
	case monthFirst && !dayFirst:
		return resources.DateOrderMDY
	default:
		return fallback
	}
}

func parseClock(clock string) (hour, minute, second int, err error) {
	c := strings.NewReplacer(" ", "", "\u202f", "", "\u00a0", "", ".", "").Replace(clock)
	c = strings.ToLower(c)

	meridiem := ""
	if strings.HasSuffix(c, "am") || strings.HasSuffix(c, "pm") {
		meridiem = c[len(c)-2:]
		c = c[:len(c)-2]
	}

	parts := strings.Split(c, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("invalid time %q", clock)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		if nums[i], err = strconv.Atoi(p); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid time component %q", p)
		}
	}
	hour, minute, second = nums[0], nums[1], nums[2]

	switch meridiem {
	case "":
		if hour > 23 {
			return 0, 0, 0, fmt.Errorf("hour %d out of range", hour)
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, 0, 0, fmt.Errorf("hour %d out of range for 12-hour clock", hour)
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	}
	if minute > 59 {
		return 0, 0, 0, fmt.Errorf("minute %d out of range", minute)
	}
	if second > 59 {
		return 0, 0, 0, fmt.Errorf("second %d out of range", second)
	}
	return hour, minute, second, nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
