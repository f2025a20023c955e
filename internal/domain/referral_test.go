package domain

import (
	"testing"
	"time"
)

const testMaxSession = 4 * time.Hour

// ─── Referral Activity ──────────────────────────────────────────────────────

func TestReferralSnapshot_Active(t *testing.T) {
	now := t0.Add(2 * time.Hour)

	tests := []struct {
		name string
		ref  ReferralSnapshot
		want bool
	}{
		{
			name: "open session within cap",
			ref: ReferralSnapshot{
				Session: MiningSession{StartTime: t0, IsActive: true},
			},
			want: true,
		},
		{
			name: "inactive session",
			ref: ReferralSnapshot{
				Session: MiningSession{StartTime: t0, IsActive: false},
			},
			want: false,
		},
		{
			name: "session older than the cap",
			ref: ReferralSnapshot{
				Session: MiningSession{StartTime: now.Add(-5 * time.Hour), IsActive: true},
			},
			want: false,
		},
		{
			name: "in cooldown never counts, even with isActive set",
			ref: ReferralSnapshot{
				Session:     MiningSession{StartTime: t0, IsActive: true},
				CooldownEnd: now.Add(time.Hour),
			},
			want: false,
		},
		{
			name: "cooldown already lapsed",
			ref: ReferralSnapshot{
				Session:     MiningSession{StartTime: t0, IsActive: true},
				CooldownEnd: now.Add(-time.Minute),
			},
			want: true,
		},
		{
			name: "missing start time",
			ref: ReferralSnapshot{
				Session: MiningSession{IsActive: true},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Active(now, testMaxSession); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountActiveReferrals(t *testing.T) {
	now := t0.Add(time.Hour)
	refs := []ReferralSnapshot{
		{Session: MiningSession{StartTime: t0, IsActive: true}},
		{Session: MiningSession{StartTime: t0, IsActive: false}},
		{Session: MiningSession{StartTime: t0, IsActive: true}, CooldownEnd: now.Add(time.Hour)},
		{Session: MiningSession{StartTime: t0.Add(30 * time.Minute), IsActive: true}},
	}

	if got := CountActiveReferrals(refs, now, testMaxSession); got != 2 {
		t.Errorf("CountActiveReferrals() = %d, want 2", got)
	}
	if got := CountActiveReferrals(nil, now, testMaxSession); got != 0 {
		t.Errorf("CountActiveReferrals(nil) = %d, want 0", got)
	}
}

// ─── Activity Window ────────────────────────────────────────────────────────

func TestReferralSnapshot_ActivityWindow(t *testing.T) {
	asOf := t0.Add(6 * time.Hour)

	tests := []struct {
		name    string
		ref     ReferralSnapshot
		wantEnd time.Time
	}{
		{
			name:    "active session capped at max duration",
			ref:     ReferralSnapshot{Session: MiningSession{StartTime: t0, IsActive: true}},
			wantEnd: t0.Add(testMaxSession),
		},
		{
			name: "active session still inside cap ends at asOf",
			ref: ReferralSnapshot{
				Session: MiningSession{StartTime: asOf.Add(-time.Hour), IsActive: true},
			},
			wantEnd: asOf,
		},
		{
			name: "closed session ends at last claim",
			ref: ReferralSnapshot{
				Session: MiningSession{StartTime: t0, LastClaim: t0.Add(2 * time.Hour)},
			},
			wantEnd: t0.Add(2 * time.Hour),
		},
		{
			name: "closed session with late claim still capped",
			ref: ReferralSnapshot{
				Session: MiningSession{StartTime: t0, LastClaim: t0.Add(9 * time.Hour)},
			},
			wantEnd: t0.Add(testMaxSession),
		},
		{
			name:    "closed session without claim falls back to the cap",
			ref:     ReferralSnapshot{Session: MiningSession{StartTime: t0}},
			wantEnd: t0.Add(testMaxSession),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.ref.ActivityWindow(asOf, testMaxSession)
			if !w.Start.Equal(tt.ref.Session.StartTime) {
				t.Errorf("window start = %v, want session start", w.Start)
			}
			if !w.End.Equal(tt.wantEnd) {
				t.Errorf("window end = %v, want %v", w.End, tt.wantEnd)
			}
		})
	}

	t.Run("no start time yields zero window", func(t *testing.T) {
		w := ReferralSnapshot{}.ActivityWindow(asOf, testMaxSession)
		if w.Valid() {
			t.Errorf("ActivityWindow() = %+v, want zero window", w)
		}
	})
}
