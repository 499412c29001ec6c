package domain

const (
	RoleMember       = "member"
	RoleChapterAdmin = "chapter_admin"
	RoleSuperAdmin   = "super_admin"
)

// Actor is the portal member behind a request, decoded from the session
// token. The membership store itself lives outside this service.
type Actor struct {
	MemberID  uint   `json:"member_id"`
	Role      string `json:"role"`
	ChapterID uint   `json:"chapter_id"`
	Verified  bool   `json:"verified"`
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// CanManage reports whether the actor may run lifecycle transitions and
// edit races for the given election. Chapter admins manage their own
// chapter's elections; national elections belong to super admins.
func (a Actor) CanManage(e Election) bool {
	if a.IsSuperAdmin() {
		return true
	}
	if a.Role != RoleChapterAdmin {
		return false
	}
	return e.ChapterID != nil && *e.ChapterID == a.ChapterID
}

// CanViewResults gates result tallies and live streams for non-public
// elections. Whoever manages an election always sees its numbers.
func (a Actor) CanViewResults(e Election) bool {
	if e.PublicResults || a.CanManage(e) {
		return true
	}
	if !a.Verified {
		return false
	}
	return e.ChapterID == nil || *e.ChapterID == a.ChapterID
}
