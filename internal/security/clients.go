package security

// In-memory client registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"catalog.write","orders.write"}
	Enabled bool
}

var Clients = map[string]Client{
	"storefront-admin": {ID: "storefront-admin", Secret: "storefront-admin-secret", Perms: []string{"catalog.write", "orders.write", "orders.read"}, Enabled: true},
	"svc-fulfilment":   {ID: "svc-fulfilment", Secret: "fulfilment-secret", Perms: []string{"orders.write", "orders.read"}, Enabled: true},
	"svc-analytics":    {ID: "svc-analytics", Secret: "ana-secret", Perms: []string{"orders.read"}, Enabled: true},
}
