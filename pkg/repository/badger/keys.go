package badger

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the different
// record kinds into logical namespaces.
//
// Data Type             Prefix   Key Format                     Value Type
// ===========================================================================
// Node record           "f:"     f:<id>                         Node (JSON)
// Children map          "c:"     c:<parentID>:<childName>       childID (bytes)
// ACL                   "k:"     k:<id>                         []ACE (JSON)
// Payload digest        "h:"     h:<id>                         sha256 (hex)
// Root pointer          "root"   root                           rootID (bytes)
//
// Node records never contain payload bytes: those live in the content store
// under the node identifier. The payload digest lets PutNode skip rewriting
// unchanged payloads, which matters when a move rewrites a whole subtree.
//
// Children are listed with a prefix scan over "c:<parentID>:", so the native
// child order of this repository is the byte order of names.

const (
	prefixNode   = "f:"
	prefixChild  = "c:"
	prefixACL    = "k:"
	prefixDigest = "h:"
	keyRoot      = "root"
)

func keyNode(id string) []byte {
	return []byte(prefixNode + id)
}

func keyChild(parentID, name string) []byte {
	return []byte(prefixChild + parentID + ":" + name)
}

// keyChildPrefix is the range-scan prefix of all children of parentID.
func keyChildPrefix(parentID string) []byte {
	return []byte(prefixChild + parentID + ":")
}

func keyACL(id string) []byte {
	return []byte(prefixACL + id)
}

func keyDigest(id string) []byte {
	return []byte(prefixDigest + id)
}
