package query

import "strconv"

// PaginateQuery appends cursor, ordering and limit clauses to a query of the
// form "SELECT ... WHERE (...)". The brackets around the where clause are
// required. Records are paged by their id column.
//
//	PaginateQuery("SELECT * FROM t WHERE (owner = $1)", []interface{}{owner}, ToCursor(10), 50, Ascending)
//	> "SELECT * FROM t WHERE (owner = $1) AND id > $2 ORDER BY id ASC LIMIT $3"
func PaginateQuery(query string, args []interface{}, cursor Cursor, limit uint64, direction Ordering) (string, []interface{}) {
	if len(cursor) > 0 {
		comparator := " > $"
		if direction == Descending {
			comparator = " < $"
		}

		args = append(args, cursor.ToUint64())
		query += " AND id" + comparator + strconv.Itoa(len(args))
	}

	query += " ORDER BY id " + direction.String()

	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	return query, args
}
