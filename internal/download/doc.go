// Package download implements the asset fetcher: a single idempotent, atomic
// transfer of one source URL to one destination path. Transfers go through a
// Transport (ffmpeg for media streams, wget or net/http for plain files) into
// a colocated temporary file that is renamed into place only on success.
package download
