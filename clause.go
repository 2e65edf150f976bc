// clause.go
// ---------
// Query clause builders. A Clause is a plain JSON object in the server's
// query dialect; builders only shape data, they never touch the network.
package baas

// Clause is one query condition, serialized as-is into the "where"
// query parameter.
type Clause map[string]any

// EqualTo matches key == value.
func EqualTo(key string, value any) Clause {
	return Clause{key: value}
}

// NotEquals matches key != value.
func NotEquals(key string, value any) Clause {
	return Clause{key: map[string]any{"$ne": value}}
}

// LessThan matches key < value.
func LessThan(key string, value any) Clause {
	return Clause{key: map[string]any{"$lt": value}}
}

// LessThanOrEqual matches key <= value.
func LessThanOrEqual(key string, value any) Clause {
	return Clause{key: map[string]any{"$lte": value}}
}

// GreaterThan matches key > value.
func GreaterThan(key string, value any) Clause {
	return Clause{key: map[string]any{"$gt": value}}
}

// GreaterThanOrEqual matches key >= value.
func GreaterThanOrEqual(key string, value any) Clause {
	return Clause{key: map[string]any{"$gte": value}}
}

// In matches when key's value is one of values.
func In(key string, values ...any) Clause {
	return Clause{key: map[string]any{"$in": values}}
}

// Exists matches on presence or absence of key.
func Exists(key string, exists bool) Clause {
	return Clause{key: map[string]any{"$exists": exists}}
}

// Regex matches key against a regular expression. Options follow the
// server dialect ("i" for case-insensitive and so on).
func Regex(key, pattern, options string) Clause {
	expr := map[string]any{"$regex": pattern}
	if options != "" {
		expr["$options"] = options
	}
	return Clause{key: expr}
}

// And combines clauses conjunctively.
func And(clauses ...Clause) Clause {
	parts := make([]any, len(clauses))
	for i, c := range clauses {
		parts[i] = c
	}
	return Clause{"$and": parts}
}

// Or combines clauses disjunctively.
func Or(clauses ...Clause) Clause {
	parts := make([]any, len(clauses))
	for i, c := range clauses {
		parts[i] = c
	}
	return Clause{"$or": parts}
}

// Not negates a single-key condition.
func Not(key string, condition map[string]any) Clause {
	return Clause{key: map[string]any{"$not": condition}}
}
