package cipherutils

import (
	"testing"

	"github.com/XiaoYao-austin/ppks"
	"github.com/stretchr/testify/assert"
)

func TestWrapUnwrapDekRoundtrip(t *testing.T) {
	dekBytes, _ := GenerateDekPoint()
	assert.Equal(t, 64, len(dekBytes))

	recipientKey, err := ppks.GenPrivKey()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	encryptedDek, err := WrapDekForRecipient(dekBytes, &recipientKey.PublicKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, 128, len(encryptedDek))

	unwrapped, err := UnwrapDekWithPrivateKey(encryptedDek, recipientKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, dekBytes, unwrapped)
}

func TestUnwrapDekWithWrongKey(t *testing.T) {
	dekBytes, _ := GenerateDekPoint()

	recipientKey, err := ppks.GenPrivKey()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	otherKey, err := ppks.GenPrivKey()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	encryptedDek, err := WrapDekForRecipient(dekBytes, &recipientKey.PublicKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// 错误的私钥不能还原出原 DEK
	unwrapped, err := UnwrapDekWithPrivateKey(encryptedDek, otherKey)
	if err == nil {
		assert.NotEqual(t, dekBytes, unwrapped)
	}
}

func TestDeserializeCipherTextWithWrongLength(t *testing.T) {
	_, err := DeserializeCipherText(make([]byte, 127))
	assert.Error(t, err)
}

func TestGetSM2PublicKeyFingerprintIsStable(t *testing.T) {
	key1, err := ppks.GenPrivKey()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	key2, err := ppks.GenPrivKey()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	fingerprint1 := GetSM2PublicKeyFingerprint(&key1.PublicKey)
	assert.Equal(t, fingerprint1, GetSM2PublicKeyFingerprint(&key1.PublicKey))
	assert.NotEqual(t, fingerprint1, GetSM2PublicKeyFingerprint(&key2.PublicKey))

	// 指纹为定宽十六进制形式
	assert.Equal(t, 64, len(fingerprint1))
}

func TestSignAndVerifyBytes(t *testing.T) {
	key, err := ppks.GenPrivKey()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	msg := []byte("wrap-1|tee-host-1|boundReceiptHash")
	signature, err := SignBytes(key, msg)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.True(t, VerifyBytes(&key.PublicKey, msg, signature))
	assert.False(t, VerifyBytes(&key.PublicKey, []byte("wrap-1|tee-host-2|boundReceiptHash"), signature))
}

func TestAESEncryptionRoundtrip(t *testing.T) {
	dekBytes, _ := GenerateDekPoint()
	key, err := DeriveSymmetricKeyFromDekBytes(dekBytes)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, 32, len(key))

	plaintext := []byte("机密数据集内容")
	encrypted, err := EncryptBytesUsingAESKey(plaintext, key)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	decrypted, err := DecryptBytesUsingAESKey(encrypted, key)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, plaintext, decrypted)

	// 错误的对称密钥不能通过 GCM 校验
	otherDekBytes, _ := GenerateDekPoint()
	otherKey, err := DeriveSymmetricKeyFromDekBytes(otherDekBytes)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	_, err = DecryptBytesUsingAESKey(encrypted, otherKey)
	assert.Error(t, err)
}
