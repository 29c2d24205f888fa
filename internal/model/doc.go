// Package model defines domain data structures used across the app: the course
// document tree (sections, modules, lessons and their assets), asset fetch tasks
// and the status enums describing their outcome.
package model
