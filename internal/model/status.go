package model

// FetchStatus represents the outcome of a single asset fetch
type FetchStatus string

const (
	// FetchStatusPending means the asset has not been attempted yet
	FetchStatusPending FetchStatus = "Pending"

	// FetchStatusFetching means the transfer is in progress
	FetchStatusFetching FetchStatus = "Fetching"

	// FetchStatusSkipped means the destination already existed
	FetchStatusSkipped FetchStatus = "Skipped"

	// FetchStatusFetched means the asset was transferred and moved into place
	FetchStatusFetched FetchStatus = "Fetched"

	// FetchStatusFailed means the transfer failed and nothing was written
	FetchStatusFailed FetchStatus = "Failed"
)

// String returns the string representation of FetchStatus
func (fs FetchStatus) String() string {
	return string(fs)
}

// IsActive returns true if the fetch is in progress
func (fs FetchStatus) IsActive() bool {
	return fs == FetchStatusFetching
}

// IsFinished returns true if the fetch reached a terminal state (skipped, fetched, or failed)
func (fs FetchStatus) IsFinished() bool {
	return fs == FetchStatusSkipped || fs == FetchStatusFetched || fs == FetchStatusFailed
}

// FetchMode selects the transfer strategy for an asset
type FetchMode string

const (
	// FetchModeStream remuxes a media stream into a container without re-encoding
	FetchModeStream FetchMode = "stream"

	// FetchModePlain copies the source bytes as they are
	FetchModePlain FetchMode = "plain"
)

// String returns the string representation of FetchMode
func (fm FetchMode) String() string {
	return string(fm)
}

// AssetKind tells which lesson field an asset was derived from
type AssetKind string

const (
	AssetKindVideo     AssetKind = "video"
	AssetKindThumbnail AssetKind = "thumbnail"
	AssetKindFile      AssetKind = "file"

	// Files written by the archiver itself rather than fetched
	AssetKindMetadata AssetKind = "metadata"
	AssetKindContent  AssetKind = "content"
)

// String returns the string representation of AssetKind
func (k AssetKind) String() string {
	return string(k)
}

// IsFetched reports whether assets of this kind come from a source URL
func (k AssetKind) IsFetched() bool {
	return k == AssetKindVideo || k == AssetKindThumbnail || k == AssetKindFile
}

// Mode returns the fetch mode used for this kind of asset
func (k AssetKind) Mode() FetchMode {
	if k == AssetKindVideo {
		return FetchModeStream
	}
	return FetchModePlain
}
