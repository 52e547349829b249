package volume

// User management mirrors FileManagerSystem's mkuser/rmuser/passwd and
// the three trust operations (grantTrustUser/revokeTrustUser/
// verifyTrustUser), all keyed off the uid-1 slot mapping established in
// slotForUID/uidForSlot.

// MkUser creates a new user in the first free slot and returns its uid.
// It does not check the acting user or sudo mode, and no caller in this
// module does so before calling it; it only enforces the data invariants
// (password length, name collisions).
func (v *Volume) MkUser(name, password string) (uint8, error) {
	if len(password) >= CredentialLength {
		return 0, newErr(KindInvalidArgument, "mkuser", name, nil)
	}
	slot := -1
	for i, u := range v.sb.Users {
		if u.UID == SystemUID {
			if slot == -1 {
				slot = i
			}
			continue
		}
		if u.Name == name {
			return 0, newErr(KindExists, "mkuser", name, nil)
		}
	}
	if slot == -1 {
		return 0, newErr(KindNoSpace, "mkuser", name, nil)
	}
	v.sb.Users[slot] = User{UID: uidForSlot(slot), Name: name, Password: password}
	for i := range v.sb.TrustMatrix {
		v.sb.TrustMatrix[i][slot] = false
		v.sb.TrustMatrix[slot][i] = false
	}
	v.sb.TrustMatrix[slot][slot] = true
	v.sb.Dirty = true
	return uidForSlot(slot), nil
}

// RmUser deletes the user occupying uid's slot and clears every trust
// relationship that named it.
func (v *Volume) RmUser(uid uint8) error {
	slot := slotForUID(uid)
	if slot == -1 || v.sb.Users[slot].UID == SystemUID {
		return newErr(KindNotFound, "rmuser", "", nil)
	}
	v.sb.Users[slot] = User{}
	for i := range v.sb.TrustMatrix {
		v.sb.TrustMatrix[i][slot] = false
		v.sb.TrustMatrix[slot][i] = false
	}
	v.sb.Dirty = true
	return nil
}

// Passwd changes uid's password.
func (v *Volume) Passwd(uid uint8, password string) error {
	if len(password) >= CredentialLength {
		return newErr(KindInvalidArgument, "passwd", "", nil)
	}
	slot := slotForUID(uid)
	if slot == -1 || v.sb.Users[slot].UID == SystemUID {
		return newErr(KindNotFound, "passwd", "", nil)
	}
	v.sb.Users[slot].Password = password
	v.sb.Dirty = true
	return nil
}

// AuthenticateUser checks name/password against the user table and
// returns the matching uid.
func (v *Volume) AuthenticateUser(name, password string) (uint8, error) {
	for _, u := range v.sb.Users {
		if u.UID != SystemUID && u.Name == name {
			if u.Password != password {
				return 0, newErr(KindAuthFailed, "login", name, nil)
			}
			return u.UID, nil
		}
	}
	return 0, newErr(KindAuthFailed, "login", name, nil)
}

// Trust grants uid's trust to target (grantTrustUser).
func (v *Volume) Trust(uid, target uint8) error {
	s, t := slotForUID(uid), slotForUID(target)
	if s == -1 || t == -1 || v.sb.Users[s].UID == SystemUID || v.sb.Users[t].UID == SystemUID {
		return newErr(KindNotFound, "trust", "", nil)
	}
	v.sb.TrustMatrix[s][t] = true
	v.sb.Dirty = true
	return nil
}

// Distrust revokes uid's trust of target (revokeTrustUser).
func (v *Volume) Distrust(uid, target uint8) error {
	s, t := slotForUID(uid), slotForUID(target)
	if s == -1 || t == -1 || v.sb.Users[s].UID == SystemUID || v.sb.Users[t].UID == SystemUID {
		return newErr(KindNotFound, "distrust", "", nil)
	}
	v.sb.TrustMatrix[s][t] = false
	v.sb.Dirty = true
	return nil
}

// TrustedBy reports whether owner's slot trusts acting's slot
// (verifyTrustUser(owner, acting)).
func (v *Volume) TrustedBy(owner, acting uint8) bool {
	s, t := slotForUID(owner), slotForUID(acting)
	if s == -1 || t == -1 {
		return false
	}
	return v.sb.TrustMatrix[s][t]
}

// ListUsers returns every live user slot.
func (v *Volume) ListUsers() []User {
	var out []User
	for _, u := range v.sb.Users {
		if u.live() {
			out = append(out, u)
		}
	}
	return out
}

// UserByUID finds a live user by uid.
func (v *Volume) UserByUID(uid uint8) (User, bool) {
	slot := slotForUID(uid)
	if slot == -1 || v.sb.Users[slot].UID == SystemUID {
		return User{}, false
	}
	return v.sb.Users[slot], true
}
