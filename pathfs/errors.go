package pathfs

import "github.com/blockvol/blockvol/volume"

func wrapDeviceErr(op, path string, err error) error {
	return &volume.Error{Kind: volume.KindDeviceError, Op: op, Path: path, Err: err}
}

func notFound(op, path string) error {
	return &volume.Error{Kind: volume.KindNotFound, Op: op, Path: path}
}

func notADirectory(op, path string) error {
	return &volume.Error{Kind: volume.KindNotADirectory, Op: op, Path: path}
}

func notAFile(op, path string) error {
	return &volume.Error{Kind: volume.KindNotAFile, Op: op, Path: path}
}

func permissionDenied(op, path string) error {
	return &volume.Error{Kind: volume.KindPermissionDenied, Op: op, Path: path}
}

func exists(op, path string) error {
	return &volume.Error{Kind: volume.KindExists, Op: op, Path: path}
}

func noSpace(op, path string) error {
	return &volume.Error{Kind: volume.KindNoSpace, Op: op, Path: path}
}

func invalidArgument(op, path string) error {
	return &volume.Error{Kind: volume.KindInvalidArgument, Op: op, Path: path}
}
