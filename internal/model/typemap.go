package model

import "strings"

// Normalized type buckets. Dialect-native types group into these for
// cross-dialect comparison; the native string is always kept alongside.
const (
	BucketString   = "string"
	BucketInteger  = "integer"
	BucketDecimal  = "decimal"
	BucketFloat    = "float"
	BucketBoolean  = "boolean"
	BucketDateTime = "datetime"
	BucketDate     = "date"
	BucketTime     = "time"
	BucketInterval = "interval"
	BucketBinary   = "binary"
	BucketUUID     = "uuid"
	BucketJSON     = "json"
	BucketXML      = "xml"
	BucketEnum     = "enum"
	BucketOther    = "other"
)

// typeBuckets maps lowercased base type names (length/precision stripped)
// from all five engines into buckets. Adapters consult engine-specific
// cases first and fall back to this table.
var typeBuckets = map[string]string{
	// character
	"char": BucketString, "nchar": BucketString, "varchar": BucketString,
	"nvarchar": BucketString, "varchar2": BucketString, "nvarchar2": BucketString,
	"text": BucketString, "ntext": BucketString, "tinytext": BucketString,
	"mediumtext": BucketString, "longtext": BucketString, "clob": BucketString,
	"nclob": BucketString, "character varying": BucketString, "character": BucketString,
	"citext": BucketString, "long": BucketString, "sysname": BucketString,

	// integer
	"int": BucketInteger, "integer": BucketInteger, "smallint": BucketInteger,
	"bigint": BucketInteger, "tinyint": BucketInteger, "mediumint": BucketInteger,
	"int2": BucketInteger, "int4": BucketInteger, "int8": BucketInteger,
	"serial": BucketInteger, "bigserial": BucketInteger, "smallserial": BucketInteger,
	"pls_integer": BucketInteger, "binary_integer": BucketInteger,

	// exact numeric
	"decimal": BucketDecimal, "numeric": BucketDecimal, "number": BucketDecimal,
	"money": BucketDecimal, "smallmoney": BucketDecimal,

	// approximate numeric
	"float": BucketFloat, "real": BucketFloat, "double": BucketFloat,
	"double precision": BucketFloat, "float4": BucketFloat, "float8": BucketFloat,
	"binary_float": BucketFloat, "binary_double": BucketFloat,

	// boolean
	"boolean": BucketBoolean, "bool": BucketBoolean, "bit": BucketBoolean,

	// date/time
	"date": BucketDate,
	"time": BucketTime, "timetz": BucketTime, "time with time zone": BucketTime,
	"time without time zone": BucketTime,
	"datetime": BucketDateTime, "datetime2": BucketDateTime, "smalldatetime": BucketDateTime,
	"datetimeoffset": BucketDateTime, "timestamp": BucketDateTime, "timestamptz": BucketDateTime,
	"timestamp with time zone": BucketDateTime, "timestamp without time zone": BucketDateTime,
	"timestamp with local time zone": BucketDateTime, "year": BucketDate,
	"interval": BucketInterval,

	// binary
	"binary": BucketBinary, "varbinary": BucketBinary, "blob": BucketBinary,
	"tinyblob": BucketBinary, "mediumblob": BucketBinary, "longblob": BucketBinary,
	"bytea": BucketBinary, "raw": BucketBinary, "long raw": BucketBinary,
	"image": BucketBinary, "bfile": BucketBinary,

	// structured
	"uuid": BucketUUID, "uniqueidentifier": BucketUUID,
	"json": BucketJSON, "jsonb": BucketJSON,
	"xml": BucketXML, "xmltype": BucketXML,
	"enum": BucketEnum, "set": BucketEnum,
}

// NormalizeType maps a dialect-native type name into its bucket. Length and
// precision suffixes are stripped before lookup; unknown types map to the
// "other" bucket rather than failing.
func NormalizeType(native string) string {
	base := strings.ToLower(strings.TrimSpace(native))
	if i := strings.IndexByte(base, '('); i >= 0 {
		// keep anything after the parens ("time(3) with time zone")
		rest := base[i:]
		if j := strings.IndexByte(rest, ')'); j >= 0 {
			base = strings.TrimSpace(base[:i] + rest[j+1:])
		} else {
			base = strings.TrimSpace(base[:i])
		}
	}
	if strings.HasSuffix(base, "[]") {
		base = strings.TrimSuffix(base, "[]")
	}
	if b, ok := typeBuckets[base]; ok {
		return b
	}
	return BucketOther
}
