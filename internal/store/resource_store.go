package store

import (
	"bytes"
	"sync"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/db"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/internal/utils/timingutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/resource"
	ipfs "github.com/ipfs/go-ipfs-api"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ResourceStore 实现了 `IResourceStore` 接口。
// 资源一律在内存中登记（DEK 只存在于这里）；配置了数据库时资源元数据与密文会另存镜像，
// 配置了 IPFS 时密文上传至 IPFS 网络，本地只保留 CID。
type ResourceStore struct {
	DB     *gorm.DB    // 本地数据库。可为 nil。
	IPFSSh *ipfs.Shell // IPFS shell。可为 nil。

	mu        sync.RWMutex
	resources map[string]*resource.Resource
}

func NewResourceStore(localDB *gorm.DB, ipfsSh *ipfs.Shell) *ResourceStore {
	return &ResourceStore{
		DB:        localDB,
		IPFSSh:    ipfsSh,
		resources: make(map[string]*resource.Resource),
	}
}

func (s *ResourceStore) CreateResource(resourceID string, plaintext []byte) (*resource.Resource, error) {
	defer timingutils.GetDeferrableTimingLogger("创建资源")()

	// 生成 DEK（一次性，此后不再重新派生），并用其导出的对称密钥加密明文
	dekBytes, dekPoint := cipherutils.GenerateDekPoint()
	symmetricKey := cipherutils.DeriveSymmetricKeyBytesFromCurvePoint(dekPoint)

	ciphertext, err := cipherutils.EncryptBytesUsingAESKey(plaintext, symmetricKey)
	if err != nil {
		return nil, errors.Wrap(err, "无法加密资源内容")
	}

	res := &resource.Resource{
		ResourceID:  resourceID,
		Ciphertext:  ciphertext,
		Dek:         dekBytes,
		Fingerprint: cipherutils.Sha256Hex(plaintext),
		Timestamp:   time.Now(),
	}

	// 启用 IPFS 时将密文上传至 IPFS 网络
	if s.IPFSSh != nil {
		cid, err := s.uploadCiphertextToIPFS(ciphertext)
		if err != nil {
			return nil, err
		}
		res.IpfsCid = cid
	}

	s.mu.Lock()
	s.resources[resourceID] = res
	s.mu.Unlock()

	// 数据库镜像为尽力而为：失败不阻断协议，只记录日志
	if s.DB != nil {
		if err := db.SaveResourceToLocalDB(res, s.DB); err != nil {
			log.Errorf("无法将资源 %v 存入本地数据库: %v", resourceID, err)
		}
	}

	log.Infof("资源已存储: id=%v 指纹=%v", resourceID, res.Fingerprint)

	resCopy := *res
	return &resCopy, nil
}

func (s *ResourceStore) GetResource(resourceID string) (*resource.Resource, error) {
	s.mu.RLock()
	res := s.resources[resourceID]
	s.mu.RUnlock()

	if res == nil {
		return nil, errorcode.ErrorNotFound
	}

	resCopy := *res
	return &resCopy, nil
}

func (s *ResourceStore) uploadCiphertextToIPFS(ciphertext []byte) (cid string, err error) {
	defer timingutils.GetDeferrableTimingLogger("上传资源密文至 IPFS")()

	// Increase timeout for large files
	if len(ciphertext) > 1073741824 {
		s.IPFSSh.SetTimeout(120 * time.Second)
	} else {
		s.IPFSSh.SetTimeout(30 * time.Second)
	}

	cid, err = s.IPFSSh.Add(bytes.NewReader(ciphertext))
	if err != nil {
		err = errors.Wrap(err, "无法将资源密文上传至 IPFS 网络")
	}

	return
}
