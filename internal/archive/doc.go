// Package archive materializes a course document into a directory tree. The
// run coordinator loads the document, the tree walker derives one directory
// per module and lesson, and the lesson materializer writes metadata and hands
// every asset to a download.Fetcher, one at a time.
package archive
