// Package merkleutils 提供证据批次锚定所需的 Merkle 树工具：
// 根哈希计算与单个叶子的成员证明（构造与验证）。
// 树为二叉树，叶子哈希取 sha256(叶子内容)；每层相邻两节点配对哈希，
// 奇数个节点时最后一个不作哈希直接上提（odd-node-carry 规则）。
package merkleutils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashLeaf 计算叶子内容的 SHA256（十六进制）。
func HashLeaf(content string) string {
	digest := sha256.Sum256([]byte(content))
	return hex.EncodeToString(digest[:])
}

// ComputeMerkleRoot 按序对叶子内容计算 Merkle 根。叶子集为空时返回空字符串。
func ComputeMerkleRoot(leaves []string) string {
	if len(leaves) == 0 {
		return ""
	}

	layer := make([]string, len(leaves))
	for i, leaf := range leaves {
		layer[i] = HashLeaf(leaf)
	}

	for len(layer) > 1 {
		var next []string
		for i := 0; i < len(layer); i += 2 {
			if i+1 < len(layer) {
				digest := sha256.Sum256([]byte(layer[i] + layer[i+1]))
				next = append(next, hex.EncodeToString(digest[:]))
			} else {
				// 奇数节点直接上提
				next = append(next, layer[i])
			}
		}
		layer = next
	}

	return layer[0]
}

// ProofStep 为成员证明中的一步：与当前节点配对的兄弟哈希及其相对位置。
// 上提的节点在该层没有兄弟，不产生证明步骤。
type ProofStep struct {
	Hash   string `json:"hash"`   // 兄弟节点哈希
	IsLeft bool   `json:"isLeft"` // 兄弟节点是否位于左侧
}

// BuildProof 为第 `index` 个叶子构造成员证明。
func BuildProof(leaves []string, index int) ([]ProofStep, error) {
	if index < 0 || index >= len(leaves) {
		return nil, fmt.Errorf("叶子下标 %v 超出范围，叶子总数为 %v", index, len(leaves))
	}

	layer := make([]string, len(leaves))
	for i, leaf := range leaves {
		layer[i] = HashLeaf(leaf)
	}

	proof := []ProofStep{}
	pos := index
	for len(layer) > 1 {
		var next []string
		for i := 0; i < len(layer); i += 2 {
			if i+1 < len(layer) {
				if i == pos {
					proof = append(proof, ProofStep{Hash: layer[i+1], IsLeft: false})
				} else if i+1 == pos {
					proof = append(proof, ProofStep{Hash: layer[i], IsLeft: true})
				}
				digest := sha256.Sum256([]byte(layer[i] + layer[i+1]))
				next = append(next, hex.EncodeToString(digest[:]))
			} else {
				next = append(next, layer[i])
			}
			if i == pos || i+1 == pos {
				pos = len(next) - 1
			}
		}
		layer = next
	}

	return proof, nil
}

// VerifyProof 验证叶子内容经由证明步骤能否重建出给定的根。
func VerifyProof(leafContent string, proof []ProofStep, root string) bool {
	current := HashLeaf(leafContent)
	for _, step := range proof {
		var digest [32]byte
		if step.IsLeft {
			digest = sha256.Sum256([]byte(step.Hash + current))
		} else {
			digest = sha256.Sum256([]byte(current + step.Hash))
		}
		current = hex.EncodeToString(digest[:])
	}

	return current == root
}
