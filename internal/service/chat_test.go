package service

import (
	"testing"

	apperrors "github.com/Tavhidjon/RealEstate/internal/errors"
	"github.com/Tavhidjon/RealEstate/internal/model"
)

func TestChatService_ResolveRole(t *testing.T) {
	svc := NewChatService(nil)
	conv := &model.Conversation{ID: 1, UserID: 10, CompanyID: 20}

	tests := []struct {
		name      string
		principal model.Principal
		wantRole  model.SenderRole
		wantErr   bool
	}{
		{
			name:      "conversation owner acts as user",
			principal: model.Principal{UserID: 10, Kind: model.PrincipalUser},
			wantRole:  model.RoleUser,
		},
		{
			name:      "representative of the company acts as company",
			principal: model.Principal{UserID: 30, Kind: model.PrincipalRepresentative, CompanyID: 20},
			wantRole:  model.RoleCompany,
		},
		{
			name:      "representative who is also the owner acts as company",
			principal: model.Principal{UserID: 10, Kind: model.PrincipalRepresentative, CompanyID: 20},
			wantRole:  model.RoleCompany,
		},
		{
			name:      "representative of another company is not a participant",
			principal: model.Principal{UserID: 30, Kind: model.PrincipalRepresentative, CompanyID: 99},
			wantErr:   true,
		},
		{
			name:      "unrelated user is not a participant",
			principal: model.Principal{UserID: 77, Kind: model.PrincipalUser},
			wantErr:   true,
		},
		{
			name:      "admin acts as company",
			principal: model.Principal{UserID: 1, Kind: model.PrincipalAdmin},
			wantRole:  model.RoleCompany,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := svc.ResolveRole(tt.principal, conv)
			if tt.wantErr {
				if apperrors.GetCode(err) != apperrors.CodeNotParticipant {
					t.Errorf("expected CodeNotParticipant, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveRole failed: %v", err)
			}
			if role != tt.wantRole {
				t.Errorf("expected role %s, got %s", tt.wantRole, role)
			}
		})
	}
}
