package auth

import (
	"crypto/subtle"
	"strings"
)

// KeyStore はログインに使用できる静的APIキーの集合。
// 起動時に1回だけ構築し、以降は読み取り専用として複数のgoroutineから共有する。
type KeyStore struct {
	keys [][]byte
}

// NewKeyStore は単一値のキーとカンマ区切りのキー一覧からKeyStoreを生成する。
// 前後の空白は除去し、空のエントリは捨て、重複は1つにまとめる。
func NewKeyStore(single, csv string) *KeyStore {
	seen := make(map[string]struct{})
	store := &KeyStore{}

	add := func(k string) {
		k = strings.TrimSpace(k)
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		store.keys = append(store.keys, []byte(k))
	}

	add(single)
	for _, k := range strings.Split(csv, ",") {
		add(k)
	}

	return store
}

// IsValid はcandidateが登録済みキーのいずれかと完全一致するかを判定する。
// 比較は定数時間で行い、一致が見つかっても残りのキーとの比較を続ける。
func (s *KeyStore) IsValid(candidate string) bool {
	if candidate == "" {
		return false
	}

	c := []byte(candidate)
	match := 0
	for _, k := range s.keys {
		match |= subtle.ConstantTimeCompare(k, c)
	}
	return match == 1
}

// Len は登録済みキーの数を返す。
func (s *KeyStore) Len() int {
	return len(s.keys)
}
