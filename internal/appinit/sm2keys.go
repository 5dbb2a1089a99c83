package appinit

import (
	"fmt"
	"io/ioutil"

	"gitee.com/czyczk/wrapdek-sharing/internal/global"
	"gitee.com/czyczk/wrapdek-sharing/pkg/sm2keyutils"
	errors "github.com/pkg/errors"
	"github.com/tjfoc/gmsm/sm2"
)

// KeyPairLocation records the paths to a key pair.
type KeyPairLocation struct {
	PrivateKey string `yaml:"privateKey"` // The path to the private key
	PublicKey  string `yaml:"publicKey"`  // The path to the public key
}

// LoadProtocolKeys 从配置的位置加载协议三方的 SM2 密钥对，
// 存入 `global` 中的相应单例（签发方、会话主机、审计账本）。
func LoadProtocolKeys(locations *ProtocolKeyLocations) error {
	if locations == nil || locations.Issuer == nil || locations.SessionHost == nil || locations.Audit == nil {
		return fmt.Errorf("未完整指定协议三方的密钥对位置")
	}

	privKey, pubKey, err := loadSM2KeyPair(locations.Issuer)
	if err != nil {
		return errors.Wrap(err, "无法加载签发方密钥对")
	}
	global.IssuerPrivateKey, global.IssuerPublicKey = privKey, pubKey

	privKey, pubKey, err = loadSM2KeyPair(locations.SessionHost)
	if err != nil {
		return errors.Wrap(err, "无法加载会话主机密钥对")
	}
	global.SessionHostPrivateKey, global.SessionHostPublicKey = privKey, pubKey

	privKey, pubKey, err = loadSM2KeyPair(locations.Audit)
	if err != nil {
		return errors.Wrap(err, "无法加载审计账本密钥对")
	}
	global.AuditPrivateKey, global.AuditPublicKey = privKey, pubKey

	return nil
}

func loadSM2KeyPair(location *KeyPairLocation) (*sm2.PrivateKey, *sm2.PublicKey, error) {
	privKeyPem, err := ioutil.ReadFile(location.PrivateKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot load SM2 private key")
	}

	privKey, err := sm2keyutils.ConvertPEMToPrivateKey(privKeyPem)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot parse SM2 private key")
	}

	pubKeyPem, err := ioutil.ReadFile(location.PublicKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot load SM2 public key")
	}

	pubKey, err := sm2keyutils.ConvertPEMToPublicKey(pubKeyPem)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot parse SM2 public key")
	}

	return privKey, pubKey, nil
}
