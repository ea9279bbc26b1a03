// Package pathutils resolves user supplied project roots into absolute paths.
package pathutils
