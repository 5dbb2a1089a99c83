package store

import (
	"testing"

	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"github.com/stretchr/testify/assert"
)

func TestCreateResourceEncryptsWithFreshDek(t *testing.T) {
	store := NewResourceStore(nil, nil)

	plaintext := []byte("机密数据集内容")
	res, err := store.CreateResource("resource-1", plaintext)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, "resource-1", res.ResourceID)
	assert.Equal(t, 64, len(res.Dek))
	assert.Equal(t, cipherutils.Sha256Hex(plaintext), res.Fingerprint)
	assert.NotEqual(t, plaintext, res.Ciphertext)

	// 密文须能用 DEK 导出的对称密钥还原
	symmetricKey, err := cipherutils.DeriveSymmetricKeyFromDekBytes(res.Dek)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	decrypted, err := cipherutils.DecryptBytesUsingAESKey(res.Ciphertext, symmetricKey)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, plaintext, decrypted)
}

func TestGetResourceReturnsStableDek(t *testing.T) {
	store := NewResourceStore(nil, nil)

	created, err := store.CreateResource("resource-1", []byte("机密数据集内容"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// DEK 只在创建时生成一次，此后每次取出都相同
	got1, err := store.GetResource("resource-1")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	got2, err := store.GetResource("resource-1")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, created.Dek, got1.Dek)
	assert.Equal(t, got1.Dek, got2.Dek)
	assert.Equal(t, created.Ciphertext, got1.Ciphertext)
}

func TestGetResourceOnUnknownID(t *testing.T) {
	store := NewResourceStore(nil, nil)

	_, err := store.GetResource("no-such-resource")
	assert.Equal(t, errorcode.ErrorNotFound, err)
}

func TestCreateResourceGeneratesDistinctDeks(t *testing.T) {
	store := NewResourceStore(nil, nil)

	res1, err := store.CreateResource("resource-1", []byte("内容一"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	res2, err := store.CreateResource("resource-2", []byte("内容二"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.NotEqual(t, res1.Dek, res2.Dek)
}
