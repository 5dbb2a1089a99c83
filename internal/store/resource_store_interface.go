package store

import "gitee.com/czyczk/wrapdek-sharing/pkg/models/resource"

// IResourceStore 定义了资源存储的接口。
// DEK 在资源创建时生成一次并由存储持有，绝不重新派生，也不出存储边界（包装除外）。
type IResourceStore interface {
	// CreateResource 生成 DEK、加密明文并保存资源。
	//
	// 参数：
	//   资源 ID
	//   明文内容
	//
	// 返回：
	//   资源对象（含密文与指纹）
	CreateResource(resourceID string, plaintext []byte) (*resource.Resource, error)

	// GetResource 获取资源。不存在时返回 `errorcode.ErrorNotFound`。
	GetResource(resourceID string) (*resource.Resource, error)
}
