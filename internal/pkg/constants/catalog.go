package constants

// Catalog sheet columns, by position.
const (
	ColumnPre = iota
	ColumnModule
	ColumnParameter
	ColumnDetail
	ColumnLow
	ColumnMedium
	ColumnHigh

	CatalogColumns
)

var CatalogColumnNames = [CatalogColumns]string{
	"PRE",
	"MODULO",
	"PARAMETRO",
	"DETALLE",
	"ESTANDAR BAJO",
	"ESTANDAR MEDIO",
	"ESTANDAR ALTO",
}

// Design sheet columns.
const (
	DesignColumnCode   = 1
	DesignColumnAmount = 2
)

const (
	BaseCode = "BASE"

	KindPlain         = "A"
	KindParameterized = "B"
)

// DesignCategoryCodes are the design sheet codes for brackets 1..5.
var DesignCategoryCodes = [5]string{
	"CATEGORIA_1",
	"CATEGORIA_2",
	"CATEGORIA_3",
	"CATEGORIA_4",
	"CATEGORIA_5",
}

// DesignBracketLimits are the inclusive upper bounds, in m², of brackets 1..4.
var DesignBracketLimits = [4]float64{100, 500, 1000, 2500}

// NATokens are cell values read as missing.
var NATokens = []string{"", "NA", "NaN", "nan", "#N/A", "N/A"}

const (
	CtxKeyRequestID     = "request_id"
	CtxKeyUserID        = "user_id"
	HeaderAuthorization = "Authorization"
)
