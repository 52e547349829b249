package volume

// Sizes and counts fixed by SPEC_FULL.md §3-§4. Block size is parameterised
// at format time (DefaultBlockSize is what Format uses unless told
// otherwise); every other constant here is derived from it or is a true
// constant of the on-disk layout.
const (
	// DefaultBlockSize is the block size used when Params.BlockSize is 0.
	DefaultBlockSize = 4096

	// MaxUsers is the fixed size of the superblock's user table and the
	// trust matrix's dimension.
	MaxUsers = 8

	// NameLength is the fixed size, in bytes, of a directory entry name
	// (including the NUL terminator).
	NameLength = 12
	// CredentialLength is the fixed size, in bytes, of a username or
	// password field in the superblock's user table.
	CredentialLength = 32

	// RootUID is the uid assigned to the single user created at format
	// time. SystemUID (0) owns the root inode and any object whose owner
	// should be universally readable/writable (§4.5).
	RootUID   = 1
	SystemUID = 0

	// DefaultRootPassword is the password assigned to the root user at
	// format time (FileManagerSystem::format in original_source).
	DefaultRootPassword = "123456"

	// headerSize is the byte length of the fixed fields preceding the
	// superblock in block 0: capacity(u32) + isUnformatted(i8) + blockSize(u16).
	headerSize = 4 + 1 + 2

	// unformattedMarker is the sentinel written to the isUnformatted byte
	// of a freshly created image.
	unformattedMarker int8 = -1
	formattedMarker   int8 = 0

	// directoryItemSize is the on-disk size of one DirectoryItem record:
	// a u32 inode block number followed by a NameLength-byte name.
	directoryItemSize = 4 + NameLength

	// fileIndexTrailerSize is the size of the "next" pointer appended
	// after a FileIndex's index array.
	fileIndexTrailerSize = 4
)

// Inode flag bit layout (§3): high 2 bits = type, middle 3 = trusted rwx,
// low 3 = other rwx.
const (
	typeFile      uint8 = 0b00 << 6
	typeDirectory uint8 = 0b01 << 6
	typeSymlink   uint8 = 0b10 << 6 // reserved, never produced (§1 non-goals)
	typeMask      uint8 = 0b11 << 6

	trustedRead    uint8 = 1 << 5
	trustedWrite   uint8 = 1 << 4
	trustedExecute uint8 = 1 << 3
	trustedMask    uint8 = 0b111 << 3

	otherRead    uint8 = 1 << 2
	otherWrite   uint8 = 1 << 1
	otherExecute uint8 = 1 << 0
	otherMask    uint8 = 0b111

	// defaultFileFlag is 0b00_110_100: file, trusted rw-, other r--.
	defaultFileFlag uint8 = typeFile | trustedRead | trustedWrite | otherRead
	// defaultDirFlag is 0b01_110_100: directory, trusted rw-, other r--.
	defaultDirFlag uint8 = typeDirectory | trustedRead | trustedWrite | otherRead
	// rootDirFlag grants rwx to trusted and other, matching original_source's
	// 0x7f root inode flag (the root is bno-owned by SystemUID, so owner
	// checks never consult these bits anyway).
	rootDirFlag uint8 = typeDirectory | trustedMask | otherMask
)

// timeLayout matches original_source's INode::getCurTime format
// ("YYYY-MM-DD HH:MM:SS", 19 characters, NUL-padded to the fixed 25-byte
// field so both Go's time.Time and the archival on-disk shape compare
// equal to what the C++ implementation wrote).
const timeLayout = "2006-01-02 15:04:05"

const timeFieldSize = 25
