package k8s

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

var nodePollInterval = 10 * time.Second

// WaitForNodesReady waits until at least minNodes nodes report Ready.
// List errors during control-plane warmup count as not-ready, not failure.
func (c *Client) WaitForNodesReady(ctx context.Context, minNodes int, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, nodePollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return false, nil
		}

		ready := 0
		for i := range nodes.Items {
			if isNodeReady(&nodes.Items[i]) {
				ready++
			}
		}
		return ready >= minNodes, nil
	})
}

// isNodeReady checks if a node reports the Ready condition true.
func isNodeReady(node *corev1.Node) bool {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
