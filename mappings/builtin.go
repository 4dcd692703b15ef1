package mappings

import "strings"

// Builtin returns the seed tables covering the Oracle constructs that have a
// direct PostgreSQL counterpart. Function values with $n placeholders are
// argument templates; the rest are plain renames.
func Builtin() Tables {
	return New(
		map[string]string{
			"NVL":          "COALESCE",
			"SYSDATE":      "CURRENT_TIMESTAMP",
			"SYSTIMESTAMP": "CURRENT_TIMESTAMP",
			"USER":         "CURRENT_USER",
			"TRUNC":        "DATE_TRUNC('day', $1)",
			"INSTR":        "POSITION($2 IN $1)",
			"ADD_MONTHS":   "$1 + ($2 * INTERVAL '1 month')",
			"LENGTHB":      "OCTET_LENGTH",
		},
		map[string]string{
			"VARCHAR2":       "VARCHAR",
			"NVARCHAR2":      "VARCHAR",
			"NUMBER":         "NUMERIC",
			"PLS_INTEGER":    "INTEGER",
			"BINARY_INTEGER": "INTEGER",
			"DATE":           "TIMESTAMP",
			"CLOB":           "TEXT",
			"NCLOB":          "TEXT",
			"LONG":           "TEXT",
			"BLOB":           "BYTEA",
			"RAW":            "BYTEA",
		},
		map[string]string{
			"NO_DATA_FOUND":    "no_data_found",
			"TOO_MANY_ROWS":    "too_many_rows",
			"DUP_VAL_ON_INDEX": "unique_violation",
			"ZERO_DIVIDE":      "division_by_zero",
			"INVALID_NUMBER":   "invalid_text_representation",
			"VALUE_ERROR":      "data_exception",
		},
	)
}

// oracleOnly lists builtin functions with no direct PostgreSQL equivalent.
// A call to one of these that finds no mapping is worth a warning; an
// unknown name outside this set is assumed to be a user function and passes
// through silently.
var oracleOnly = map[string]bool{
	"NVL":            true,
	"NVL2":           true,
	"DECODE":         true,
	"INSTR":          true,
	"TRUNC":          true,
	"ADD_MONTHS":     true,
	"MONTHS_BETWEEN": true,
	"LAST_DAY":       true,
	"NEXT_DAY":       true,
	"SYSDATE":        true,
	"SYSTIMESTAMP":   true,
	"SYS_CONTEXT":    true,
	"USERENV":        true,
	"LISTAGG":        true,
	"REGEXP_LIKE":    true,
	"LENGTHB":        true,
}

// IsOracleSpecific reports whether name is an Oracle builtin that needs a
// mapping to survive translation.
func IsOracleSpecific(name string) bool {
	return oracleOnly[strings.ToUpper(name)]
}
