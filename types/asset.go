package types

// CachedAsset is one persisted binary cache record, keyed by its source URL.
type CachedAsset struct {
	URL       string `json:"url"`
	Blob      []byte `json:"blob"`
	Timestamp int64  `json:"timestamp"`
	Size      int64  `json:"size"`
}

// Info returns the record without its blob.
func (a CachedAsset) Info() AssetInfo {
	return AssetInfo{URL: a.URL, Timestamp: a.Timestamp, Size: a.Size}
}

// AssetInfo is the metadata of a persisted asset, used by cleanup scans that
// do not need the blob bytes.
type AssetInfo struct {
	URL       string
	Timestamp int64
	Size      int64
}
