// Package layout describes the on-disk convention shared by the scaffold
// builder and reaper: where fixtures are read from, where the working tree
// lives, and which paths a teardown must delete.
package layout
