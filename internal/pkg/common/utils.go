package common

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// StringPtr 回傳字串指標
func StringPtr(s string) *string {
	return &s
}

// HashBytes 計算 SHA-256 哈希值（十六進位）
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// CollapseSpaces 將連續空白合併為單一空格並去除前後空白
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
