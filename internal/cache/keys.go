package cache

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// GET /api/flights/{id}
// flight:data:{flight_id}
func FlightKey(flightID uuid.UUID) string {
	return fmt.Sprintf("flight:data:%s", flightID)
}

// GET /api/search
// search:{from}:{to}:{date}:legs={n}
func SearchKey(fromIata, toIata, date string, maxLegs int) string {
	from := url.PathEscape(strings.ToUpper(strings.TrimSpace(fromIata)))
	to := url.PathEscape(strings.ToUpper(strings.TrimSpace(toIata)))
	return fmt.Sprintf("search:%s:%s:%s:legs=%d", from, to, date, maxLegs)
}

// Все ключи поиска храним в set — инвалидация по событию рейса без SCAN.
func SearchKeysSetKey() string {
	return "search:keys"
}
