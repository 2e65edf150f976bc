package baas

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ObjectQuery describes one bucket query. The zero value queries
// everything with server-default paging.
type ObjectQuery struct {
	// Where filters results; nil matches everything.
	Where Clause

	// Sort lists sort keys in priority order; prefix a key with "-" for
	// descending.
	Sort []string

	// Skip and Limit page the results. Limit 0 means server default.
	Skip  int
	Limit int

	// CountRequest asks the server to include the total match count.
	CountRequest bool

	// Projection selects returned fields (1 include, 0 exclude).
	Projection map[string]int
}

// queryParams serializes the query into request query parameters.
func (q *ObjectQuery) queryParams() (map[string]string, error) {
	params := map[string]string{}
	if q == nil {
		return params, nil
	}
	if q.Where != nil {
		where, err := json.Marshal(q.Where)
		if err != nil {
			return nil, ErrConfiguration.Wrap(err)
		}
		params["where"] = string(where)
	}
	if len(q.Sort) > 0 {
		params["order"] = strings.Join(q.Sort, ",")
	}
	if q.Skip > 0 {
		params["skip"] = strconv.Itoa(q.Skip)
	}
	if q.Limit != 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.CountRequest {
		params["count"] = "1"
	}
	if len(q.Projection) > 0 {
		projection, err := json.Marshal(q.Projection)
		if err != nil {
			return nil, ErrConfiguration.Wrap(err)
		}
		params["projection"] = string(projection)
	}
	return params, nil
}
