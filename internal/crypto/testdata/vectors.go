package testdata

// KDFVector is a known PBKDF2-HMAC-SHA256 (100,000 rounds) output.
type KDFVector struct {
	Name     string
	Password string
	Salt     string // Hex
	Key      string // Hex
}

// ContainerVector is a complete container built from fixed inputs.
type ContainerVector struct {
	Name      string
	Mode      string
	Password  string // Password mode only
	Key       string // Hex, key mode only
	Salt      string // Hex, password mode only
	Nonce     string // Hex
	Plaintext string
	Container string // Hex
}

// KDFVectors contains key derivation test vectors.
var KDFVectors = []KDFVector{
	{
		Name:     "short password",
		Password: "pw123",
		Salt:     "000102030405060708090a0b0c0d0e0f",
		Key:      "4fde8118fb6ba51b0ec80517271432abc8352db06ce05be94c589e5475366d25",
	},
	{
		Name:     "passphrase",
		Password: "correct horse battery staple",
		Salt:     "73616c7473616c7473616c7473616c74",
		Key:      "ecb909b0240a86e74dc63b1fb035b76fd7e0e0a806d2277ed5aefb742d18a7d0",
	},
	{
		Name:     "unicode password",
		Password: "пароль123",
		Salt:     "000102030405060708090a0b0c0d0e0f",
		Key:      "4e639f5c139f7a9b410c9bd89e5422bec6187e438d99d4f8002c589d7851fe90",
	},
}

// ContainerVectors contains containers built from fixed keys and nonces.
var ContainerVectors = []ContainerVector{
	{
		Name:      "key mode hello",
		Mode:      "key",
		Key:       "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		Nonce:     "a0a1a2a3a4a5a6a7a8a9aaab",
		Plaintext: "hello",
		Container: "a0a1a2a3a4a5a6a7a8a9aaab8e7d10412ab469edeb6fa84bae4731a07dbf70c564",
	},
	{
		Name:      "key mode empty",
		Mode:      "key",
		Key:       "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		Nonce:     "a0a1a2a3a4a5a6a7a8a9aaab",
		Plaintext: "",
		Container: "a0a1a2a3a4a5a6a7a8a9aaab5c699625af4b93a0f8220a2a6119c5d0",
	},
	{
		Name:      "password mode secret",
		Mode:      "password",
		Password:  "pw123",
		Salt:      "000102030405060708090a0b0c0d0e0f",
		Nonce:     "a0a1a2a3a4a5a6a7a8a9aaab",
		Plaintext: "secret",
		Container: "000102030405060708090a0b0c0d0e0fa0a1a2a3a4a5a6a7a8a9aaab6bf92ae9b59d4e7ea592398ba4ba183b43f737bef1ae",
	},
}

// GCMTestCase15 is test case 15 from the GCM specification
// (AES-256, 96-bit IV, no AAD).
var GCMTestCase15 = struct {
	Key        string
	Nonce      string
	Plaintext  string
	Ciphertext string // Hex, includes tag
}{
	Key:        "feffe9928665731c6d6a8f9467308308feffe9928665731c6d6a8f9467308308",
	Nonce:      "cafebabefacedbaddecaf888",
	Plaintext:  "d9313225f88406e5a55909c5aff5269a86a7a9531534f7da2e4c303d8a318a721c3c0c95956809532fcf0e2449a6b525b16aedf5aa0de657ba637b391aafd255",
	Ciphertext: "522dc1f099567d07f47f37a32a84427d643a8cdcbfe5c0c97598a2bd2555d1aa8cb08e48590dbb3da7b08b1056828838c5f61e6393ba7a0abcc9f662898015adb094dac5d93471bdec1a502270e3cc6c",
}
