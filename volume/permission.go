package volume

// Permission checks mirror CommandLineInterface's checkReadAccess,
// checkWriteAccess, and checkOwnerAccess exactly, operating on an INode
// and the acting uid. sudo is the session's one-shot trusted-mode flag
// (§1, "sudo-mode session semantics"); pathfs owns turning it on and off
// around a single command.

// CanRead reports whether uid may read tar (checkReadAccess).
func CanRead(tar *INode, uid uint8, trustedBy func(owner, acting uint8) bool, sudo bool) bool {
	if tar.UID == SystemUID || uid == tar.UID || sudo {
		return true
	}
	if trustedBy(tar.UID, uid) {
		return tar.Flag&trustedRead != 0
	}
	return tar.Flag&otherRead != 0
}

// CanWrite reports whether uid may write tar (checkWriteAccess).
func CanWrite(tar *INode, uid uint8, trustedBy func(owner, acting uint8) bool, sudo bool) bool {
	if tar.UID == SystemUID || uid == tar.UID || sudo {
		return true
	}
	if trustedBy(tar.UID, uid) {
		return tar.Flag&trustedWrite != 0
	}
	return tar.Flag&otherWrite != 0
}

// CanChangeOwner reports whether uid may perform an owner-only operation
// (chmod) on tar (checkOwnerAccess). A system-owned object (UID 0) never
// grants this, even under sudo — see DESIGN.md decision OQ-3.
func CanChangeOwner(tar *INode, uid uint8, sudo bool) bool {
	if tar.UID == SystemUID {
		return false
	}
	return uid == tar.UID || sudo
}

// Who selects which permission triad a Chmod call targets.
type Who int

const (
	WhoOwner Who = iota
	WhoTrusted
	WhoOther
)

// ApplyChmod returns flag with the triad(s) named by who replaced by
// the r/w/x bits set in access (a 3-character string such as "rwx" or
// "r--"). who selects which triad mask applies: WhoOwner covers both
// trusted and other (there is no separate owner-rwx triad — the owner
// always has implicit rwx), WhoTrusted only
// the trusted triad, WhoOther only the other triad. Grounded exactly on
// CommandLineInterface::chmod's bit arithmetic (0x24/0x12/0x09 per
// access character, masked down to the selected triad).
func ApplyChmod(flag uint8, who Who, access string) uint8 {
	var mask uint8
	switch who {
	case WhoTrusted:
		mask = trustedMask
	case WhoOther:
		mask = otherMask
	default: // WhoOwner
		mask = trustedMask | otherMask
	}

	var val uint8
	if len(access) > 0 && access[0] == 'r' {
		val |= trustedRead | otherRead
	}
	if len(access) > 1 && access[1] == 'w' {
		val |= trustedWrite | otherWrite
	}
	if len(access) > 2 && access[2] == 'x' {
		val |= trustedExecute | otherExecute
	}
	val &= mask
	return (flag &^ mask) | val
}
