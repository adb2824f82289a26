package model

// PrincipalKind 主体类型
// 用显式枚举代替"是否带 company 属性"式的动态判断，授权检查必须穷尽所有分支
type PrincipalKind int8

const (
	PrincipalUser           PrincipalKind = iota + 1 // 普通用户
	PrincipalRepresentative                          // 公司代表
	PrincipalAdmin                                   // 管理员
)

// Principal 已认证的连接主体
type Principal struct {
	UserID    int64
	Kind      PrincipalKind
	CompanyID int64 // 仅 PrincipalRepresentative 时非零
}

// PrincipalFromUser 根据用户记录推导主体
func PrincipalFromUser(u *User) Principal {
	switch {
	case u.IsAdmin:
		return Principal{UserID: u.ID, Kind: PrincipalAdmin}
	case u.CompanyID != 0:
		return Principal{UserID: u.ID, Kind: PrincipalRepresentative, CompanyID: u.CompanyID}
	default:
		return Principal{UserID: u.ID, Kind: PrincipalUser}
	}
}

// CanActForCompany 是否可以代表指定公司发言
// 管理员按操作授权，不预先加入任何公司分组
func (p Principal) CanActForCompany(companyID int64) bool {
	switch p.Kind {
	case PrincipalAdmin:
		return true
	case PrincipalRepresentative:
		return p.CompanyID == companyID
	case PrincipalUser:
		return false
	}
	return false
}
