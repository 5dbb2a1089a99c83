package resource

import "time"

// Resource 表示由资源存储持有的受保护资源。
// DEK 在资源创建时生成一次，之后不再重新派生；密文由 DEK 导出的对称密钥加密得到。
type Resource struct {
	ResourceID  string    `json:"resourceID"`  // 资源 ID
	Ciphertext  []byte    `json:"ciphertext"`  // 资源密文（由 DEK 导出的对称密钥加密）
	Dek         []byte    `json:"-"`           // 序列化后的 DEK 曲线点。真实系统中须受保护，不可出存储边界。
	Fingerprint string    `json:"fingerprint"` // 资源明文的 SHA256 摘要（十六进制）。用于完整性引用，不承担保密性。
	IpfsCid     string    `json:"ipfsCid"`     // 密文在 IPFS 网络上的 CID。未启用 IPFS 时为零值。
	Timestamp   time.Time `json:"timestamp"`   // 创建时间戳
}
