package service

import (
	"strconv"
	"testing"

	"gitee.com/czyczk/wrapdek-sharing/internal/utils/cipherutils"
	"gitee.com/czyczk/wrapdek-sharing/pkg/errorcode"
	"gitee.com/czyczk/wrapdek-sharing/pkg/models/evidence"
	"github.com/stretchr/testify/assert"
)

const testResourcePlaintext = "机密数据集内容"

// createFinalizedWrapForTest walks a request through acceptance, batch anchoring and finalization,
// and returns the environment together with an enforcement service on the session host side.
func createFinalizedWrapForTest(t *testing.T) (*issuanceTestEnv, *EnforcementService, string) {
	env := createIssuanceTestEnv(t, testWrapTTL)

	wrapID, accepted, err := env.issuanceSvc.HandleRequest(env.createSignedRequest(t, "req-use"), testSessionHostID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	if isAccepted := assert.True(t, accepted); !isAccepted {
		t.FailNow()
	}

	_, err = env.auditSvc.FlushBatch()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	_, err = env.issuanceSvc.FinalizePending()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	enforcementSvc := NewEnforcementService(testSessionHostID, env.hostKey, &env.issuerKey.PublicKey,
		env.issuanceSvc, env.resourceStore, env.auditSvc)

	return env, enforcementSvc, wrapID
}

func TestUseMetersCallsUpToCap(t *testing.T) {
	env, enforcementSvc, wrapID := createFinalizedWrapForTest(t)

	// The first use accepts the token lazily. Each use binds the plaintext to its ordinal.
	for i := 1; i <= 3; i++ {
		outputHash, err := enforcementSvc.Use(wrapID, "analysis")
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}
		expected := cipherutils.Sha256Hex([]byte(testResourcePlaintext + ":" + strconv.Itoa(i)))
		assert.Equal(t, expected, outputHash)
	}

	// The fourth use exceeds the cap
	_, err := enforcementSvc.Use(wrapID, "analysis")
	assert.Equal(t, errorcode.ErrorForbidden, err)

	// Each successful use left a session-signed usage evidence behind
	receipt, err := env.auditSvc.FlushBatch()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	if isNotNil := assert.NotNil(t, receipt); !isNotNil {
		t.FailNow()
	}

	batchEvidence, err := env.auditSvc.ListBatchEvidence(receipt.BatchID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	if isLenEqual := assert.Len(t, batchEvidence, 3); !isLenEqual {
		t.FailNow()
	}
	for _, record := range batchEvidence {
		assert.Equal(t, evidence.DecisionTeeUsageOk, record.DecisionResult)
		assert.Equal(t, "req-use", record.RequestID)
		// Session evidence carries the requester context of the accepted request
		assert.Equal(t, testRequesterDid, record.RequesterDid)
		assert.Equal(t, cipherutils.Sha256Hex([]byte("attestation-summary")), record.AttestationSummaryHash)
		signedMsg := []byte(record.EvidenceID + "|" + record.RequestID + "|" + record.DecisionResult)
		assert.True(t, cipherutils.VerifyBytes(&env.hostKey.PublicKey, signedMsg, record.SessionSignature))
	}
}

func TestUseExhaustionDestroysSessionTerminally(t *testing.T) {
	_, enforcementSvc, wrapID := createFinalizedWrapForTest(t)

	for i := 1; i <= 3; i++ {
		_, err := enforcementSvc.Use(wrapID, "analysis")
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}
	}

	// Reaching the cap closes the session and zeroizes its key material in place
	session := enforcementSvc.sessions[wrapID]
	if isNotNil := assert.NotNil(t, session); !isNotNil {
		t.FailNow()
	}
	assert.False(t, session.active)
	assert.True(t, session.exhausted)
	for _, b := range session.dek {
		assert.Zero(t, b)
	}
	for _, b := range session.symmetricKey {
		assert.Zero(t, b)
	}

	// Exhaustion is terminal: the still-valid token cannot be re-accepted
	err := enforcementSvc.Accept(wrapID)
	assert.Equal(t, errorcode.ErrorForbidden, err)

	// Further uses keep failing and never reset the call count
	for i := 0; i < 2; i++ {
		_, err := enforcementSvc.Use(wrapID, "analysis")
		assert.Equal(t, errorcode.ErrorForbidden, err)
	}
	assert.Equal(t, 3, session.usedCalls)
}

func TestUseRejectsMismatchedPurposeWithoutConsumingACall(t *testing.T) {
	_, enforcementSvc, wrapID := createFinalizedWrapForTest(t)

	_, err := enforcementSvc.Use(wrapID, "redistribution")
	assert.Equal(t, errorcode.ErrorForbidden, err)

	// The rejected attempt must not count against the cap
	for i := 1; i <= 3; i++ {
		_, err := enforcementSvc.Use(wrapID, "analysis")
		assert.NoError(t, err)
	}
}

func TestUseBeforeFinalizationIsNotReady(t *testing.T) {
	env := createIssuanceTestEnv(t, testWrapTTL)

	wrapID, accepted, err := env.issuanceSvc.HandleRequest(env.createSignedRequest(t, "req-early"), testSessionHostID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	assert.True(t, accepted)

	enforcementSvc := NewEnforcementService(testSessionHostID, env.hostKey, &env.issuerKey.PublicKey,
		env.issuanceSvc, env.resourceStore, env.auditSvc)

	_, err = enforcementSvc.Use(wrapID, "analysis")
	assert.Equal(t, errorcode.ErrorNotReady, err)
}

func TestAcceptIsIdempotent(t *testing.T) {
	_, enforcementSvc, wrapID := createFinalizedWrapForTest(t)

	err := enforcementSvc.Accept(wrapID)
	assert.NoError(t, err)
	err = enforcementSvc.Accept(wrapID)
	assert.NoError(t, err)
}

func TestOnRevokeDestroysKeyMaterialAndAcks(t *testing.T) {
	env, enforcementSvc, wrapID := createFinalizedWrapForTest(t)

	_, err := enforcementSvc.Use(wrapID, "analysis")
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	err = env.authLedger.RevokeAuthorization(env.authorizationID)
	assert.NoError(t, err)
	revoked, err := env.issuanceSvc.OnAuthorizationRevoked(env.authorizationID)
	assert.NoError(t, err)
	assert.Equal(t, 1, revoked)

	err = enforcementSvc.OnRevoke(wrapID)
	assert.NoError(t, err)

	// The session's key material is zeroized in place
	session := enforcementSvc.sessions[wrapID]
	if isNotNil := assert.NotNil(t, session); !isNotNil {
		t.FailNow()
	}
	assert.False(t, session.active)
	for _, b := range session.dek {
		assert.Zero(t, b)
	}
	for _, b := range session.symmetricKey {
		assert.Zero(t, b)
	}

	// Further uses fail as revoked
	_, err = enforcementSvc.Use(wrapID, "analysis")
	assert.Equal(t, errorcode.ErrorRevoked, err)

	// Drain the pending evidence: one usage plus exactly one revoke ack
	receipt, err := env.auditSvc.FlushBatch()
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	if isNotNil := assert.NotNil(t, receipt); !isNotNil {
		t.FailNow()
	}

	batchEvidence, err := env.auditSvc.ListBatchEvidence(receipt.BatchID)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	ackCount := 0
	for _, record := range batchEvidence {
		if record.DecisionResult == evidence.DecisionTeeRevokeAck {
			ackCount++
			signedMsg := []byte(record.EvidenceID + "|" + record.RequestID + "|" + record.DecisionResult)
			assert.True(t, cipherutils.VerifyBytes(&env.hostKey.PublicKey, signedMsg, record.SessionSignature))
		}
	}
	assert.Equal(t, 1, ackCount)

	// OnRevoke is idempotent: a second call leaves no additional evidence
	err = enforcementSvc.OnRevoke(wrapID)
	assert.NoError(t, err)
	emptyReceipt, err := env.auditSvc.FlushBatch()
	assert.NoError(t, err)
	assert.Nil(t, emptyReceipt)
}
