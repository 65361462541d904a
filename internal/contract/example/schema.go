package example

import "github.com/felixgeelhaar/babylon-bindings/pkg/schema"

// Schemas lists the contract's messages and responses for export.
func Schemas() []schema.Entry {
	return []schema.Entry{
		{Name: "instantiate_msg", Value: InstantiateMsg{}},
		{Name: "query_msg", Value: QueryMsg{}, Union: true},
		{Name: "owner_response", Value: OwnerResponse{}},
		{Name: "chain_response", Value: ChainResponse{}},
	}
}
