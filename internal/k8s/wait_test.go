package k8s

import (
	"context"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func readyNode(name string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

func notReadyNode(name string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionFalse},
			},
		},
	}
}

func TestWaitForNodesReady(t *testing.T) {
	origInterval := nodePollInterval
	nodePollInterval = 10 * time.Millisecond
	t.Cleanup(func() { nodePollInterval = origInterval })

	t.Run("enough ready nodes", func(t *testing.T) {
		client := NewWithClientset(fake.NewClientset(readyNode("node-a"), readyNode("node-b")))
		if err := client.WaitForNodesReady(context.Background(), 2, time.Second); err != nil {
			t.Fatalf("WaitForNodesReady() = %v, want nil", err)
		}
	})

	t.Run("not ready nodes time out", func(t *testing.T) {
		client := NewWithClientset(fake.NewClientset(notReadyNode("node-a")))
		if err := client.WaitForNodesReady(context.Background(), 1, 50*time.Millisecond); err == nil {
			t.Fatal("WaitForNodesReady() = nil, want timeout error")
		}
	})

	t.Run("mixed readiness counts only ready", func(t *testing.T) {
		client := NewWithClientset(fake.NewClientset(readyNode("node-a"), notReadyNode("node-b")))
		if err := client.WaitForNodesReady(context.Background(), 2, 50*time.Millisecond); err == nil {
			t.Fatal("WaitForNodesReady() = nil, want timeout error")
		}
		if err := client.WaitForNodesReady(context.Background(), 1, time.Second); err != nil {
			t.Fatalf("WaitForNodesReady() = %v, want nil", err)
		}
	})
}

func TestIsNodeReady(t *testing.T) {
	if !isNodeReady(readyNode("node-a")) {
		t.Error("isNodeReady() = false for a ready node")
	}
	if isNodeReady(notReadyNode("node-a")) {
		t.Error("isNodeReady() = true for a not-ready node")
	}
	if isNodeReady(&corev1.Node{}) {
		t.Error("isNodeReady() = true for a node with no conditions")
	}
}
