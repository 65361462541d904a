package example

import "github.com/felixgeelhaar/babylon-bindings/internal/contract/sdk"

// State is the contract's only record.
type State struct {
	Owner string `json:"owner"`
}

// Config holds State under the "config" key.
var Config = sdk.NewItem[State]("config")
