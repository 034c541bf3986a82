package vfs

import (
	"strings"

	"codegraph/internal/goerr"
	"codegraph/internal/vpath"
)

// policyRejectionMessage is surfaced verbatim on every PolicyRejected
// error, matching spec §4.2 ("a human message that explains VFS is for
// documents/reports/configuration and that code files must be edited on
// the physical filesystem") and scenario S2's required substring.
const policyRejectionMessage = "VFS write operations are not allowed for code files; " +
	"the virtual file system is for documents, reports, and configuration. " +
	"AI agents should edit code files directly on the physical filesystem and let the watcher reflect changes back."

// checkWritePolicy enforces read-only workspaces and the code-extension
// rejection set on create, write, and update operations. Read operations
// never call this.
func checkWritePolicy(ws *Workspace, p vpath.Path, defaultPolicy PolicySet) error {
	if ws.ReadOnly {
		return goerr.New(goerr.ReadOnly, "vfs: workspace %s is read-only", ws.ID)
	}

	policy := defaultPolicy
	if ws.AllowedWritePolicy != nil {
		policy = *ws.AllowedWritePolicy
	}

	ext := strings.ToLower(p.Extension())
	if ext != "" && policy[ext] {
		return goerr.New(goerr.PolicyRejected, "%s (path=%s, extension=%s)", policyRejectionMessage, p, ext)
	}
	return nil
}
