// Package domain contains the core scholarly entities of the application:
// authors, publications, and their bibliographic records. It is independent
// of any specific data source or delivery mechanism.
package domain
