package validate

import "testing"

func baseRequest() Request {
	return Request{
		Files: []File{{EncryptedFilenameLen: 10, Size: 100}},
	}
}

func TestValidate_AcceptsWellFormedRequest(t *testing.T) {
	if err := Validate(baseRequest(), DefaultLimits()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_RejectsEmptyCapsa(t *testing.T) {
	req := Request{}
	err := Validate(req, DefaultLimits())
	if err == nil {
		t.Fatal("expected error for capsa with no files, subject, or body")
	}
	verr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if verr.Field != "capsa" {
		t.Errorf("Field = %q, want %q", verr.Field, "capsa")
	}
}

func TestValidate_SubjectOnlyIsNotEmpty(t *testing.T) {
	req := Request{HasSubject: true}
	if err := Validate(req, DefaultLimits()); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_TableDrivenLimits(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request, *Limits)
		wantErr bool
	}{
		{
			name:    "too many keychain entries",
			mutate:  func(r *Request, l *Limits) { l.MaxKeychainEntries = 1; r.Keychain = make([]KeychainEntry, 2) },
			wantErr: true,
		},
		{
			name: "empty party id",
			mutate: func(r *Request, l *Limits) {
				r.Keychain = []KeychainEntry{{PartyID: ""}}
			},
			wantErr: true,
		},
		{
			name: "party id too long",
			mutate: func(r *Request, l *Limits) {
				l.MaxPartyIDLen = 4
				r.Keychain = []KeychainEntry{{PartyID: "waytoolong"}}
			},
			wantErr: true,
		},
		{
			name: "too many acting_for",
			mutate: func(r *Request, l *Limits) {
				l.MaxActingFor = 1
				r.Keychain = []KeychainEntry{{PartyID: "p", ActingFor: []string{"a", "b"}}}
			},
			wantErr: true,
		},
		{
			name:    "subject too long",
			mutate:  func(r *Request, l *Limits) { l.MaxEncryptedSubjectLen = 1; r.EncryptedSubjectLen = 2 },
			wantErr: true,
		},
		{
			name:    "body too long",
			mutate:  func(r *Request, l *Limits) { l.MaxEncryptedBodyLen = 1; r.EncryptedBodyLen = 2 },
			wantErr: true,
		},
		{
			name:    "structured too long",
			mutate:  func(r *Request, l *Limits) { l.MaxEncryptedStructLen = 1; r.EncryptedStructuredLen = 2 },
			wantErr: true,
		},
		{
			name:    "metadata label too long",
			mutate:  func(r *Request, l *Limits) { l.MaxMetadataLabelLen = 1; r.Metadata.Label = "ab" },
			wantErr: true,
		},
		{
			name: "too many metadata tags",
			mutate: func(r *Request, l *Limits) {
				l.MaxMetadataTags = 1
				r.Metadata.Tags = []string{"a", "b"}
			},
			wantErr: true,
		},
		{
			name: "metadata tag too long",
			mutate: func(r *Request, l *Limits) {
				l.MaxMetadataTagLen = 1
				r.Metadata.Tags = []string{"ab"}
			},
			wantErr: true,
		},
		{
			name:    "metadata notes too long",
			mutate:  func(r *Request, l *Limits) { l.MaxMetadataNotesLen = 1; r.Metadata.Notes = "ab" },
			wantErr: true,
		},
		{
			name: "too many related packages",
			mutate: func(r *Request, l *Limits) {
				l.MaxRelatedPackages = 1
				r.Metadata.RelatedPackages = []string{"a", "b"}
			},
			wantErr: true,
		},
		{
			name:    "too many files",
			mutate:  func(r *Request, l *Limits) { l.MaxFiles = 0 },
			wantErr: true,
		},
		{
			name: "encrypted filename too long",
			mutate: func(r *Request, l *Limits) {
				l.MaxEncryptedFilenameLen = 1
				r.Files = []File{{EncryptedFilenameLen: 2, Size: 1}}
			},
			wantErr: true,
		},
		{
			name: "per-file size too large",
			mutate: func(r *Request, l *Limits) {
				l.MaxFileSize = 1
				r.Files = []File{{EncryptedFilenameLen: 1, Size: 2}}
			},
			wantErr: true,
		},
		{
			name: "total size too large",
			mutate: func(r *Request, l *Limits) {
				l.MaxTotalSize = 3
				r.Files = []File{{Size: 2}, {Size: 2}}
			},
			wantErr: true,
		},
		{
			name:    "signature payload too long",
			mutate:  func(r *Request, l *Limits) { l.MaxSignaturePayloadLen = 1; r.SignaturePayloadLen = 2 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			limits := DefaultLimits()
			tt.mutate(&req, &limits)

			err := Validate(req, limits)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
