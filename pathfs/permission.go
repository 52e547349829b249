package pathfs

import "github.com/blockvol/blockvol/volume"

func canRead(s *Session, n *volume.INode) bool {
	return volume.CanRead(n, s.UID, s.trustedBy(), s.Sudo)
}

func canWrite(s *Session, n *volume.INode) bool {
	return volume.CanWrite(n, s.UID, s.trustedBy(), s.Sudo)
}

func canChangeOwner(s *Session, n *volume.INode) bool {
	return volume.CanChangeOwner(n, s.UID, s.Sudo)
}
