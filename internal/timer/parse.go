package timer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrBadDuration = errors.New("bad duration")

// больше не помещается в time.Duration; +Inf тоже отсекается
const maxMinutes = math.MaxInt64 / float64(time.Minute)

// ParseDuration accepts "90s", "1h30m", "4:30" (m:s), "1:04:30" (h:m:s)
// and a bare number of minutes.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadDuration)
	}

	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: %q is negative", ErrBadDuration, s)
		}
		if math.IsNaN(n) || n >= maxMinutes {
			return 0, fmt.Errorf("%w: %q is out of range", ErrBadDuration, s)
		}
		return time.Duration(n * float64(time.Minute)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrBadDuration, s)
	}
	return d, nil
}

func parseClock(s string) (time.Duration, error) {
	fields := strings.Split(s, ":")
	if len(fields) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
	}

	const maxSeconds = int64(math.MaxInt64 / time.Second)

	var total int64
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadDuration, s)
		}
		if i > 0 {
			if total > maxSeconds/60 {
				return 0, fmt.Errorf("%w: %q is out of range", ErrBadDuration, s)
			}
			total *= 60
		}
		if n > maxSeconds-total {
			return 0, fmt.Errorf("%w: %q is out of range", ErrBadDuration, s)
		}
		total += n
	}
	return time.Duration(total) * time.Second, nil
}

// FormatRemaining renders mm:ss, or h:mm:ss from an hour up. Partial
// seconds round up so the display reaches 00:00 only at zero.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64((d + time.Second - 1) / time.Second)
	h, m, sec := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}
