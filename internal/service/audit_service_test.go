package service

import (
	"testing"
	"time"

	"gitee.com/czyczk/wrapdek-sharing/internal/utils/merkleutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
	"github.com/XiaoYao-austin/ppks"
	"github.com/stretchr/testify/assert"
)

func createAuditServiceForTest(t *testing.T) *AuditService {
	privKey, err := ppks.GenPrivKey()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	return NewAuditService(privKey, nil, nil)
}

func createEvidenceForTest(evidenceID string, decision string) *evidence.EvidenceRecord {
	return &evidence.EvidenceRecord{
		EvidenceID:     evidenceID,
		RequestID:      "req-" + evidenceID,
		RequesterDid:   "did:example:alice",
		DecisionResult: decision,
		Timestamp:      time.Now(),
	}
}

func TestFlushBatchOnEmptyQueue(t *testing.T) {
	// An empty queue is a no-op: no receipt, no state change.
	auditSvc := createAuditServiceForTest(t)

	receipt, err := auditSvc.FlushBatch()
	assert.NoError(t, err)
	assert.Nil(t, receipt)
	assert.Nil(t, auditSvc.LatestReceipt())
}

func TestFlushBatchProducesVerifiableReceipt(t *testing.T) {
	auditSvc := createAuditServiceForTest(t)

	evidenceIDs := []string{"ev-1", "ev-2", "ev-3"}
	for _, evidenceID := range evidenceIDs {
		err := auditSvc.SubmitEvidence(createEvidenceForTest(evidenceID, evidence.DecisionAllowPendingReceipt))
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}
	}

	receipt, err := auditSvc.FlushBatch()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	if isNotNil := assert.NotNil(t, receipt); !isNotNil {
		t.FailNow()
	}

	// The Merkle root must be the deterministic commitment over the drained evidence IDs in order
	assert.Equal(t, merkleutils.ComputeMerkleRoot(evidenceIDs), receipt.MerkleRoot)
	assert.EqualValues(t, 1, receipt.Sequence)
	assert.NotEmpty(t, receipt.AnchorTxID)

	// The receipt signature must verify against the audit public key
	pubKey := &auditSvc.PrivateKey.PublicKey
	assert.True(t, pubKey.Verify([]byte(receipt.BatchID+"|"+receipt.MerkleRoot), receipt.Signature))

	// Every drained evidence must be locatable in the batch and carry a valid membership proof
	for _, evidenceID := range evidenceIDs {
		batchID, ok := auditSvc.GetBatchIDByEvidence(evidenceID)
		assert.True(t, ok)
		assert.Equal(t, receipt.BatchID, batchID)

		proof, err := auditSvc.BuildMembershipProof(batchID, evidenceID)
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}
		assert.True(t, merkleutils.VerifyProof(evidenceID, proof, receipt.MerkleRoot))
	}
}

func TestFlushBatchDrainsQueueAtomically(t *testing.T) {
	auditSvc := createAuditServiceForTest(t)

	err := auditSvc.SubmitEvidence(createEvidenceForTest("ev-a", evidence.DecisionAllowPendingReceipt))
	assert.NoError(t, err)

	firstReceipt, err := auditSvc.FlushBatch()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// Evidence submitted after a flush goes into the next batch
	err = auditSvc.SubmitEvidence(createEvidenceForTest("ev-b", evidence.DecisionTeeUsageOk))
	assert.NoError(t, err)

	secondReceipt, err := auditSvc.FlushBatch()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.NotEqual(t, firstReceipt.BatchID, secondReceipt.BatchID)
	assert.EqualValues(t, 2, secondReceipt.Sequence)

	// The first evidence stays bound to the first batch
	batchID, ok := auditSvc.GetBatchIDByEvidence("ev-a")
	assert.True(t, ok)
	assert.Equal(t, firstReceipt.BatchID, batchID)

	batchID, ok = auditSvc.GetBatchIDByEvidence("ev-b")
	assert.True(t, ok)
	assert.Equal(t, secondReceipt.BatchID, batchID)

	latestReceipt := auditSvc.LatestReceipt()
	if isNotNil := assert.NotNil(t, latestReceipt); !isNotNil {
		t.FailNow()
	}
	assert.Equal(t, secondReceipt.BatchID, latestReceipt.BatchID)
}

func TestGetReceiptOnUnknownBatch(t *testing.T) {
	auditSvc := createAuditServiceForTest(t)

	_, err := auditSvc.GetReceipt("no-such-batch")
	assert.Equal(t, errorcode.ErrorNotFound, err)

	_, err = auditSvc.ListBatchEvidence("no-such-batch")
	assert.Equal(t, errorcode.ErrorNotFound, err)

	_, ok := auditSvc.GetBatchIDByEvidence("no-such-evidence")
	assert.False(t, ok)
}

func TestListBatchEvidencePreservesOrder(t *testing.T) {
	auditSvc := createAuditServiceForTest(t)

	evidenceIDs := []string{"ev-x", "ev-y", "ev-z"}
	for _, evidenceID := range evidenceIDs {
		err := auditSvc.SubmitEvidence(createEvidenceForTest(evidenceID, evidence.DecisionAllowPendingReceipt))
		assert.NoError(t, err)
	}

	receipt, err := auditSvc.FlushBatch()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	batchEvidence, err := auditSvc.ListBatchEvidence(receipt.BatchID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	if isLenEqual := assert.Len(t, batchEvidence, len(evidenceIDs)); !isLenEqual {
		t.FailNow()
	}
	for i, evidenceID := range evidenceIDs {
		assert.Equal(t, evidenceID, batchEvidence[i].EvidenceID)
	}
}

func TestSubmitEvidenceRejectsEmptyRecord(t *testing.T) {
	auditSvc := createAuditServiceForTest(t)

	err := auditSvc.SubmitEvidence(nil)
	assert.Error(t, err)

	err = auditSvc.SubmitEvidence(&evidence.EvidenceRecord{})
	assert.Error(t, err)
}
