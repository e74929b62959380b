package configs

// identityTrustedSinceVersion is the first schema whose relay identity and
// sealed key may be carried forward. Anything older, including a missing or
// malformed version, loses them.
const identityTrustedSinceVersion = 2

// migrate clears the relay identity of settings written before
// identityTrustedSinceVersion. The version itself is left unchanged; it is
// stamped when the identity is set again through the Store.
func migrate(file *settingsFile) {
	if file.Version < identityTrustedSinceVersion {
		file.HybridConnectionKeyName = ""
		file.ServiceBusSharedKey = nil
		file.HybridConnectionURL = ""
	}
}
