// Package platform contains OS integration and format glue shared by the
// archive pipeline: filesystem-safe naming, atomic file helpers, asset URL
// resolution, tolerant JSON document loading and logger construction.
package platform
