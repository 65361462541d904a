package bindings

// BtcBlockHeader is a Bitcoin block header as reported by the chain. Hashes
// are hex strings in display (byte-reversed) order.
type BtcBlockHeader struct {
	Version       int32  `json:"version"`
	PrevBlockhash string `json:"prev_blockhash"`
	MerkleRoot    string `json:"merkle_root"`
	Time          uint32 `json:"time"`
	Bits          uint32 `json:"bits"`
	Nonce         uint32 `json:"nonce"`
}

// BtcBlockHeaderInfo pairs a header with its height on the Bitcoin chain.
type BtcBlockHeaderInfo struct {
	Header BtcBlockHeader `json:"header"`
	Height uint64         `json:"height"`
}

// FinalizedEpochInfo describes the most recently finalized checkpoint epoch.
type FinalizedEpochInfo struct {
	// EpochNumber is the number of the latest finalized epoch.
	EpochNumber uint64 `json:"epoch_number"`
	// LastBlockHeight is the height of the last block in that epoch.
	LastBlockHeight uint64 `json:"last_block_height"`
}

type CurrentEpochResponse struct {
	Epoch uint64 `json:"epoch"`
}

type LatestFinalizedEpochInfoResponse struct {
	EpochInfo FinalizedEpochInfo `json:"epoch_info"`
}

// BtcTipResponse always carries a header: a bootstrapped chain has a tip.
type BtcTipResponse struct {
	HeaderInfo BtcBlockHeaderInfo `json:"header_info"`
}

// BtcBaseHeaderResponse always carries the anchor header the chain was bootstrapped from.
type BtcBaseHeaderResponse struct {
	HeaderInfo BtcBlockHeaderInfo `json:"header_info"`
}

// BtcHeaderQueryResponse answers lookups by height or hash. HeaderInfo is
// nil when the chain knows no such header; that is an answer, not an error.
type BtcHeaderQueryResponse struct {
	HeaderInfo *BtcBlockHeaderInfo `json:"header_info"`
}
