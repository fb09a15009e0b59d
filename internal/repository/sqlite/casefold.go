package sqlite

import (
	"database/sql/driver"
	"strings"

	sqlitedrv "modernc.org/sqlite"
)

// casefoldFunc is a deterministic SQL function returning its argument lowered
// with Unicode rules. NULL stays NULL.
const casefoldFunc = "cahier_casefold"

func init() {
	sqlitedrv.MustRegisterDeterministicScalarFunction(casefoldFunc, 1,
		func(_ *sqlitedrv.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return foldCase(v), nil
			case []byte:
				return foldCase(string(v)), nil
			default:
				return v, nil
			}
		})
}

func foldCase(s string) string {
	return strings.ToLower(s)
}
