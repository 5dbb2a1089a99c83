package ledger

import "gitee.com/czyczk/wrapdek-sharing/pkg/models/identity"

// IIdentityRegistry 定义了 DID 注册处的访问对象接口，维护 DID 到公钥指纹的绑定。
type IIdentityRegistry interface {
	// Register 注册或更新一个 DID 与公钥指纹的绑定。
	//
	// 返回：
	//   注册回执
	Register(did string, publicKeyFingerprint string) (*identity.IdentityReceipt, error)

	// Query 查询 DID 的注册回执。未注册时返回 `errorcode.ErrorNotFound`。
	Query(did string) (*identity.IdentityReceipt, error)
}
