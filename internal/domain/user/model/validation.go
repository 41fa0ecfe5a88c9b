package model

import (
	"strconv"
	"strings"

	"social_moderation/internal/pkg/apperr"
)

// MinPhoneLength 手机号最短位数
const MinPhoneLength = 7

// ValidatePhone 非空、至少 7 位、仅数字
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return apperr.Validation("phoneNo", "Phone number is required")
	}
	if len(phone) < MinPhoneLength {
		return apperr.Validation("phoneNo", "Phone number must be at least 7 characters")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return apperr.Validation("phoneNo", "Phone number must contain only digits")
		}
	}
	return nil
}

// ParsePhone 校验后转换为远端使用的整数形式
func ParsePhone(phone string) (int64, error) {
	if err := ValidatePhone(phone); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(phone), 10, 64)
	if err != nil {
		return 0, apperr.Validation("phoneNo", "Phone number is too long")
	}
	return n, nil
}
