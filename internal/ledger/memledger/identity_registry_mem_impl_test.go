package memledger

import (
	"testing"

	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"github.com/stretchr/testify/assert"
)

func TestRegisterAndQueryIdentity(t *testing.T) {
	registry := NewIdentityRegistryMemImpl()

	receipt, err := registry.Register("did:example:alice", "fingerprint-1")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, "did:example:alice", receipt.Did)
	assert.Equal(t, "fingerprint-1", receipt.PublicKeyFingerprint)
	assert.NotEmpty(t, receipt.ReceiptID)

	queried, err := registry.Query("did:example:alice")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, receipt.ReceiptID, queried.ReceiptID)
	assert.Equal(t, "fingerprint-1", queried.PublicKeyFingerprint)
}

func TestQueryUnregisteredIdentity(t *testing.T) {
	registry := NewIdentityRegistryMemImpl()

	_, err := registry.Query("did:example:nobody")
	assert.Equal(t, errorcode.ErrorNotFound, err)
}

func TestReRegisterReplacesFingerprint(t *testing.T) {
	registry := NewIdentityRegistryMemImpl()

	_, err := registry.Register("did:example:alice", "fingerprint-1")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	_, err = registry.Register("did:example:alice", "fingerprint-2")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	queried, err := registry.Query("did:example:alice")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.Equal(t, "fingerprint-2", queried.PublicKeyFingerprint)
}
