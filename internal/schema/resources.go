package schema

// ClientCreate validates POST /clients bodies.
var ClientCreate = Schema{
	Name: "client.create",
	Fields: []Field{
		{Name: "type", Type: TypeString, Required: true, MinLength: 1},
		{Name: "firstName", Type: TypeString, Required: true, MinLength: 1},
		{Name: "lastName", Type: TypeString, Required: true, MinLength: 1},
		{Name: "email", Type: TypeString, Required: true, Format: FormatEmail},
		{Name: "phone", Type: TypeString},
		{Name: "stage", Type: TypeString},
		{Name: "status", Type: TypeString},
		{Name: "leadScore", Type: TypeInteger, Minimum: Int(0)},
		{Name: "source", Type: TypeString},
		{Name: "preferences", Type: TypeAny},
		{Name: "notes", Type: TypeString},
	},
}

// ClientUpdate validates PUT /clients/{id} bodies.
var ClientUpdate = ClientCreate.Partial("client.update")

// TransactionCreate validates POST /transactions bodies.
var TransactionCreate = Schema{
	Name: "transaction.create",
	Fields: []Field{
		{Name: "transactionType", Type: TypeString, Required: true, MinLength: 1},
		{Name: "propertyAddress", Type: TypeAny},
		{Name: "listPrice", Type: TypeString, Format: FormatDecimal},
		{Name: "finalPrice", Type: TypeString, Format: FormatDecimal},
		{Name: "contractDate", Type: TypeString, Format: FormatDate},
		{Name: "closingDate", Type: TypeString, Format: FormatDate},
		{Name: "buyerClientId", Type: TypeString, Format: FormatUUID},
		{Name: "sellerClientId", Type: TypeString, Format: FormatUUID},
		{Name: "status", Type: TypeString},
	},
}

// TransactionUpdate validates PUT /transactions/{id} bodies.
var TransactionUpdate = TransactionCreate.Partial("transaction.update")

// Pagination bounds. (MaxPage-1)*MaxPageLimit stays inside int32.
const (
	MaxPage      = 1_000_000
	MaxPageLimit = 1_000
)

// Pagination validates list query strings.
var Pagination = Schema{
	Name: "pagination",
	Fields: []Field{
		{Name: "page", Type: TypeInteger, Minimum: Int(1), Maximum: Int(MaxPage)},
		{Name: "limit", Type: TypeInteger, Minimum: Int(1), Maximum: Int(MaxPageLimit)},
	},
}
