// This package contains helper functions that can be used within the entire app.
// On one hand, it includes functions as extensions to the `ppks` package,
// like the functions of serialization for `*ppks.CipherText` and the wrap / unwrap
// operations that protect a DEK curve point for a recipient's SM2 public key.
// On the other hand, it includes other handy tools for symmetric encryption and
// decryption using AES keys, hashing and SM2 signatures, etc..
package cipherutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/XiaoYao-austin/ppks"
	"github.com/pkg/errors"
	"github.com/tjfoc/gmsm/sm2"

	"gitee.com/czyczk/wrapdek-sharing/pkg/sm2keyutils"
)

// Sha256Hex 计算字节串的 SHA256 摘要并以十六进制字符串返回。
// 协议中所有绑定哈希（授权哈希、回执哈希）一律使用该定宽形式，不使用原始 ID。
func Sha256Hex(b []byte) string {
	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:])
}

// SerializeCipherText serializes a `CipherText` object into a byte slice of length of 128.
func SerializeCipherText(cipherText *ppks.CipherText) []byte {
	// 将左侧点 K 装入 [0:64]，将右侧点 C 装入 [64:128]。各分量右对齐定宽填充，保证反序列化可逆。
	encryptedKeyBytes := make([]byte, 128)
	cipherText.K.X.FillBytes(encryptedKeyBytes[:32])
	cipherText.K.Y.FillBytes(encryptedKeyBytes[32:64])
	cipherText.C.X.FillBytes(encryptedKeyBytes[64:96])
	cipherText.C.Y.FillBytes(encryptedKeyBytes[96:])

	return encryptedKeyBytes
}

// DeserializeCipherText parses a byte slice of length of 128 into a `CipherText` object.
func DeserializeCipherText(encryptedKeyBytes []byte) (*ppks.CipherText, error) {
	// 解析加密后的密钥材料，将其转化为两个 CurvePoint 后，分别作为 CipherText 的 K 和 C
	if len(encryptedKeyBytes) != 128 {
		return nil, fmt.Errorf("密钥材料长度不正确，应为 128 字节")
	}
	var pointKX, pointKY big.Int
	_ = pointKX.SetBytes(encryptedKeyBytes[:32])
	_ = pointKY.SetBytes(encryptedKeyBytes[32:64])

	encryptedKeyAsPubKeyK, err := sm2keyutils.ConvertBigIntegersToPublicKey(&pointKX, &pointKY)
	if err != nil {
		return nil, err
	}

	var pointCX, pointCY big.Int
	_ = pointCX.SetBytes(encryptedKeyBytes[64:96])
	_ = pointCY.SetBytes(encryptedKeyBytes[96:])

	encryptedKeyAsPubKeyC, err := sm2keyutils.ConvertBigIntegersToPublicKey(&pointCX, &pointCY)
	if err != nil {
		return nil, err
	}

	encryptedKeyAsCipherText := ppks.CipherText{
		K: (ppks.CurvePoint)(*encryptedKeyAsPubKeyK),
		C: (ppks.CurvePoint)(*encryptedKeyAsPubKeyC),
	}

	return &encryptedKeyAsCipherText, nil
}

// SerializeSM2PublicKey 将一个 SM2 公钥序列化成一个长度为 64 的字节切片。
func SerializeSM2PublicKey(publicKey *sm2.PublicKey) []byte {
	pubKeyBytes := [64]byte{}
	publicKey.X.FillBytes(pubKeyBytes[:32])
	publicKey.Y.FillBytes(pubKeyBytes[32:])
	return pubKeyBytes[:]
}

// DeserializeSM2PublicKey 解析一个长度为 64 的字节切片，得到 *sm2.PublicKey。
func DeserializeSM2PublicKey(publicKeyBytes []byte) (*sm2.PublicKey, error) {
	if len(publicKeyBytes) != 64 {
		return nil, fmt.Errorf("公钥字节切片长度不正确")
	}

	publicKeyX, publicKeyY := big.Int{}, big.Int{}
	_ = publicKeyX.SetBytes(publicKeyBytes[:32])
	_ = publicKeyY.SetBytes(publicKeyBytes[32:])

	publicKey, err := sm2keyutils.ConvertBigIntegersToPublicKey(&publicKeyX, &publicKeyY)
	if err != nil {
		return nil, err
	}

	return publicKey, nil
}

// GetSM2PublicKeyFingerprint 计算 SM2 公钥的指纹（序列化后取 SHA256，十六进制）。
func GetSM2PublicKeyFingerprint(publicKey *sm2.PublicKey) string {
	return Sha256Hex(SerializeSM2PublicKey(publicKey))
}

// DeriveSymmetricKeyBytesFromCurvePoint 从 curvePoint 中导出 256 位信息，在应用内作为对称密钥。具体使用上可用于创建 AES256 block。
func DeriveSymmetricKeyBytesFromCurvePoint(curvePoint *ppks.CurvePoint) []byte {
	keyBytes := make([]byte, 32)
	curvePoint.X.FillBytes(keyBytes)
	return keyBytes
}

// GenerateDekPoint 生成一个新的 DEK 曲线点并返回其 64 字节序列化形式。
// DEK 在资源创建时生成一次，此后不再重新派生。
func GenerateDekPoint() ([]byte, *ppks.CurvePoint) {
	point := ppks.GenPoint()
	return SerializeSM2PublicKey((*sm2.PublicKey)(point)), point
}

// WrapDekForRecipient 将序列化的 DEK 曲线点为接收方公钥加密包装，得到 128 字节的包装密文。
// 这里是真实的非对称包装（SM2 点加密），替代演示性的按位异或。
func WrapDekForRecipient(dekBytes []byte, recipientPubKey *sm2.PublicKey) ([]byte, error) {
	dekAsPubKey, err := DeserializeSM2PublicKey(dekBytes)
	if err != nil {
		return nil, errors.Wrap(err, "无法解析 DEK 曲线点")
	}

	dekPoint := (ppks.CurvePoint)(*dekAsPubKey)
	encryptedDek, err := ppks.PointEncrypt(recipientPubKey, &dekPoint)
	if err != nil {
		return nil, errors.Wrap(err, "无法为接收方包装 DEK")
	}

	return SerializeCipherText(encryptedDek), nil
}

// UnwrapDekWithPrivateKey 用接收方私钥解封包装密文，还原出序列化的 DEK 曲线点。
func UnwrapDekWithPrivateKey(encryptedDek []byte, recipientPrivKey *sm2.PrivateKey) ([]byte, error) {
	cipherText, err := DeserializeCipherText(encryptedDek)
	if err != nil {
		return nil, err
	}

	dekPoint, err := ppks.PointDecrypt(cipherText, recipientPrivKey)
	if err != nil {
		return nil, errors.Wrap(err, "无法解封 DEK")
	}

	return SerializeSM2PublicKey((*sm2.PublicKey)(dekPoint)), nil
}

// DeriveSymmetricKeyFromDekBytes 从序列化的 DEK 曲线点导出 AES256 对称密钥。
func DeriveSymmetricKeyFromDekBytes(dekBytes []byte) ([]byte, error) {
	dekAsPubKey, err := DeserializeSM2PublicKey(dekBytes)
	if err != nil {
		return nil, errors.Wrap(err, "无法解析 DEK 曲线点")
	}

	dekPoint := (ppks.CurvePoint)(*dekAsPubKey)
	return DeriveSymmetricKeyBytesFromCurvePoint(&dekPoint), nil
}

// SignBytes 用 SM2 私钥对消息做签名。
func SignBytes(privKey *sm2.PrivateKey, msg []byte) ([]byte, error) {
	signature, err := privKey.Sign(rand.Reader, msg, nil)
	if err != nil {
		return nil, errors.Wrap(err, "无法完成 SM2 签名")
	}

	return signature, nil
}

// VerifyBytes 用 SM2 公钥验证消息签名。
func VerifyBytes(pubKey *sm2.PublicKey, msg []byte, signature []byte) bool {
	return pubKey.Verify(msg, signature)
}

// EncryptBytesUsingAESKey 使用 AES 对称密钥加密数据
func EncryptBytesUsingAESKey(b []byte, key []byte) (encryptedBytes []byte, err error) {
	cipherBlock, err := aes.NewCipher(key)
	if err != nil {
		return
	}

	aesGCM, err := cipher.NewGCM(cipherBlock)
	if err != nil {
		return
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return
	}

	encryptedBytes = aesGCM.Seal(nonce, nonce, b, nil)
	return
}

// DecryptBytesUsingAESKey 使用 AES 对称密钥解密数据
func DecryptBytesUsingAESKey(b []byte, key []byte) (decryptedBytes []byte, err error) {
	cipherBlock, err := aes.NewCipher(key)
	if err != nil {
		return
	}

	aesGCM, err := cipher.NewGCM(cipherBlock)
	if err != nil {
		return
	}

	nonceSize := aesGCM.NonceSize()
	if len(b) < nonceSize {
		err = fmt.Errorf("密文长度太短")
		return
	}

	nonce, b := b[:nonceSize], b[nonceSize:]
	decryptedBytes, err = aesGCM.Open(nil, nonce, b, nil)
	if err != nil {
		return
	}

	return
}
