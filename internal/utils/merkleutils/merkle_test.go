package merkleutils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hashPair(left string, right string) string {
	digest := sha256.Sum256([]byte(left + right))
	return hex.EncodeToString(digest[:])
}

func TestComputeMerkleRootIsDeterministic(t *testing.T) {
	leaves := []string{"evidence-1", "evidence-2", "evidence-3", "evidence-4"}

	root1 := ComputeMerkleRoot(leaves)
	root2 := ComputeMerkleRoot(leaves)
	assert.Equal(t, root1, root2)

	// 叶子顺序不同则根不同
	swapped := []string{"evidence-2", "evidence-1", "evidence-3", "evidence-4"}
	assert.NotEqual(t, root1, ComputeMerkleRoot(swapped))
}

func TestComputeMerkleRootOnSmallSets(t *testing.T) {
	// 空集返回空字符串
	assert.Equal(t, "", ComputeMerkleRoot(nil))

	// 单叶子的根即为叶子哈希
	assert.Equal(t, HashLeaf("evidence-1"), ComputeMerkleRoot([]string{"evidence-1"}))

	// 双叶子的根为两叶子哈希的配对哈希
	expected := hashPair(HashLeaf("evidence-1"), HashLeaf("evidence-2"))
	assert.Equal(t, expected, ComputeMerkleRoot([]string{"evidence-1", "evidence-2"}))
}

func TestComputeMerkleRootWithOddLeaves(t *testing.T) {
	// 3 个叶子时最后一个不作哈希直接上提
	leaves := []string{"evidence-1", "evidence-2", "evidence-3"}

	h12 := hashPair(HashLeaf("evidence-1"), HashLeaf("evidence-2"))
	expected := hashPair(h12, HashLeaf("evidence-3"))
	assert.Equal(t, expected, ComputeMerkleRoot(leaves))
}

func TestBuildProofAndVerify(t *testing.T) {
	// 对各种叶子数量逐个验证成员证明
	for numLeaves := 1; numLeaves <= 6; numLeaves++ {
		leaves := make([]string, numLeaves)
		for i := range leaves {
			leaves[i] = fmt.Sprintf("evidence-%v", i)
		}
		root := ComputeMerkleRoot(leaves)

		for index, leaf := range leaves {
			proof, err := BuildProof(leaves, index)
			if isNoError := assert.NoError(t, err); !isNoError {
				t.FailNow()
			}

			assert.True(t, VerifyProof(leaf, proof, root))

			// 篡改叶子内容后验证应失败
			assert.False(t, VerifyProof(leaf+"-tampered", proof, root))
		}
	}
}

func TestVerifyProofAgainstWrongRoot(t *testing.T) {
	leaves := []string{"evidence-1", "evidence-2", "evidence-3"}
	proof, err := BuildProof(leaves, 1)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	wrongRoot := ComputeMerkleRoot([]string{"evidence-1", "evidence-2"})
	assert.False(t, VerifyProof("evidence-2", proof, wrongRoot))
}

func TestBuildProofWithOutOfRangeIndex(t *testing.T) {
	leaves := []string{"evidence-1", "evidence-2"}

	_, err := BuildProof(leaves, -1)
	assert.Error(t, err)

	_, err = BuildProof(leaves, 2)
	assert.Error(t, err)
}
