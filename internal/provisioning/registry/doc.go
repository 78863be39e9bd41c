// Package registry provisions the container registry images deploy from.
package registry
