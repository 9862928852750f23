//go:build !linux

package files

func renameNoReplace(src, dst string) error {
	return errNoReplaceUnsupported
}
