// Package kubeconfig builds and maintains the kubeconfig entry for a
// provisioned cluster. Credentials are never embedded: the entry uses exec
// auth so every kubectl call fetches a fresh token from the aws CLI.
package kubeconfig

import (
	"encoding/base64"
	"fmt"
	"os"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/ekstrap/ekstrap/internal/platform/aws"
)

// DefaultPath is where the generated kubeconfig lands, relative to the
// working directory.
const DefaultPath = "kubeconfig"

// Build returns a kubeconfig granting access to one cluster, authenticated
// through `aws eks get-token`. contextName keys the cluster, user, and
// context entries.
func Build(cluster *aws.Cluster, region, contextName string) (*clientcmdapi.Config, error) {
	caData, err := base64.StdEncoding.DecodeString(cluster.CertificateAuthority)
	if err != nil {
		return nil, fmt.Errorf("decoding cluster certificate authority: %w", err)
	}

	cfg := clientcmdapi.NewConfig()
	cfg.Clusters[contextName] = &clientcmdapi.Cluster{
		Server:                   cluster.Endpoint,
		CertificateAuthorityData: caData,
	}
	cfg.AuthInfos[contextName] = &clientcmdapi.AuthInfo{
		Exec: &clientcmdapi.ExecConfig{
			APIVersion:      "client.authentication.k8s.io/v1beta1",
			Command:         "aws",
			Args:            []string{"eks", "get-token", "--cluster-name", cluster.Name, "--region", region, "--output", "json"},
			InteractiveMode: clientcmdapi.NeverExecInteractiveMode,
		},
	}
	cfg.Contexts[contextName] = &clientcmdapi.Context{
		Cluster:  contextName,
		AuthInfo: contextName,
	}
	cfg.CurrentContext = contextName
	return cfg, nil
}

// Bytes serializes a kubeconfig.
func Bytes(cfg *clientcmdapi.Config) ([]byte, error) {
	out, err := clientcmd.Write(*cfg)
	if err != nil {
		return nil, fmt.Errorf("serializing kubeconfig: %w", err)
	}
	return out, nil
}

// WriteFile persists a kubeconfig to path, merging over an existing file so
// entries for other clusters survive. The new config's current context wins.
func WriteFile(cfg *clientcmdapi.Config, path string) error {
	merged := cfg
	if existing, err := clientcmd.LoadFromFile(path); err == nil {
		for name, cluster := range cfg.Clusters {
			existing.Clusters[name] = cluster
		}
		for name, authInfo := range cfg.AuthInfos {
			existing.AuthInfos[name] = authInfo
		}
		for name, context := range cfg.Contexts {
			existing.Contexts[name] = context
		}
		existing.CurrentContext = cfg.CurrentContext
		merged = existing
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("loading existing kubeconfig %s: %w", path, err)
	}

	if err := clientcmd.WriteToFile(*merged, path); err != nil {
		return fmt.Errorf("writing kubeconfig %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

// RemoveContext deletes a cluster's entries from the kubeconfig at path. A
// missing file or missing context is success. When the last context goes,
// the file goes with it.
func RemoveContext(path, contextName string) error {
	existing, err := clientcmd.LoadFromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("loading kubeconfig %s: %w", path, err)
	}

	delete(existing.Clusters, contextName)
	delete(existing.AuthInfos, contextName)
	delete(existing.Contexts, contextName)
	if existing.CurrentContext == contextName {
		existing.CurrentContext = ""
		for name := range existing.Contexts {
			existing.CurrentContext = name
			break
		}
	}

	if len(existing.Contexts) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing kubeconfig %s: %w", path, err)
		}
		return nil
	}

	if err := clientcmd.WriteToFile(*existing, path); err != nil {
		return fmt.Errorf("writing kubeconfig %s: %w", path, err)
	}
	return nil
}
