package locust_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/zalando-incubator/zelt/adapters/kube"
	"github.com/zalando-incubator/zelt/adapters/kube/kubetest"
	"github.com/zalando-incubator/zelt/adapters/storage"
	"github.com/zalando-incubator/zelt/config/zeltcfg"
	"github.com/zalando-incubator/zelt/domain/manifest"
	"github.com/zalando-incubator/zelt/internal/poll"
	"github.com/zalando-incubator/zelt/usecase/locust"
)

type fakeObjectAPI struct {
	puts    map[string]string
	deletes int
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes++
	return &s3.DeleteObjectOutput{}, nil
}

var _ = Describe("Locust use case", func() {
	var (
		ctx        context.Context
		dir        string
		locustfile string
		cs         *fake.Clientset
		kc         *kube.Client
		connects   int
		uc         *locust.UseCase
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		locustfile = writeLocustfile(dir)
		connects = 0
		kc, cs = kubetest.NewClient(kubetest.ReadyPod("load", "locust-controller-0", controllerLabels))
		uc = &locust.UseCase{Connect: kubetest.Connector(kc, &connects)}
	})

	Describe("Deploy", func() {
		It("creates controller and worker and waits once for the controller pod", func() {
			out, err := uc.Deploy(ctx, &locust.DeployInput{
				Locustfile:     locustfile,
				ManifestsDir:   writeManifests(dir, true),
				WorkerReplicas: 4,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.DashboardURL).To(Equal("http://locust.example.org"))

			Expect(kubetest.CountActions(cs, "create", "deployments")).To(Equal(2))
			Expect(kubetest.CountActions(cs, "list", "pods")).To(Equal(1))

			worker, err := cs.AppsV1().Deployments("load").Get(ctx, "locust-worker", metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(*worker.Spec.Replicas).To(Equal(int32(4)))
			controller, err := cs.AppsV1().Deployments("load").Get(ctx, "locust-controller", metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(*controller.Spec.Replicas).To(Equal(int32(1)))

			cm, err := cs.CoreV1().ConfigMaps("load").Get(ctx, storage.ConfigMapName, metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(cm.Data).To(HaveKeyWithValue(storage.ConfigMapKey, "from locust import HttpUser\n"))
			Expect(cm.Labels).To(HaveKeyWithValue("application", "locust"))

			_, err = cs.CoreV1().Services("load").Get(ctx, "locust", metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
			_, err = cs.NetworkingV1().Ingresses("load").Get(ctx, "locust", metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
		})

		It("creates a single deployment without a worker manifest", func() {
			_, err := uc.Deploy(ctx, &locust.DeployInput{
				Locustfile:     locustfile,
				ManifestsDir:   writeManifests(dir, false),
				WorkerReplicas: 4,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(kubetest.CountActions(cs, "create", "deployments")).To(Equal(1))
			Expect(kubetest.CountActions(cs, "list", "pods")).To(Equal(1))
		})

		It("deletes existing resources first when cleaning", func() {
			_, err := uc.Deploy(ctx, &locust.DeployInput{
				Locustfile:   locustfile,
				ManifestsDir: writeManifests(dir, true),
				Clean:        true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(kubetest.CountActions(cs, "delete", "namespaces")).To(Equal(1))
			Expect(kubetest.CountActions(cs, "delete-collection", "deployments")).To(Equal(1))
			Expect(kubetest.CountActions(cs, "create", "deployments")).To(Equal(2))
		})

		It("uploads the locustfile to S3", func() {
			api := &fakeObjectAPI{puts: map[string]string{}}
			uc.S3 = api
			_, err := uc.Deploy(ctx, &locust.DeployInput{
				Locustfile:   locustfile,
				ManifestsDir: writeManifests(dir, true),
				Storage:      "S3",
				Bucket:       "bucket",
				Key:          "locustfile.py",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(api.puts).To(HaveKeyWithValue("bucket/locustfile.py", "from locust import HttpUser\n"))
			Expect(kubetest.CountActions(cs, "create", "configmaps")).To(Equal(0))
		})

		It("runs locally without touching the cluster", func() {
			var ran string
			uc.RunLocal = func(_ context.Context, f string) error {
				ran = f
				return nil
			}
			out, err := uc.Deploy(ctx, &locust.DeployInput{Locustfile: locustfile, ManifestsDir: "ignored", Local: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(ran).To(Equal(locustfile))
			Expect(out.DashboardURL).To(Equal(locust.LocalDashboardURL))
			Expect(connects).To(BeZero())
		})

		DescribeTable("rejects invalid input before any cluster call",
			func(in *locust.DeployInput, target error) {
				if in.Locustfile == "-" {
					in.Locustfile = locustfile
				}
				if in.ManifestsDir == "-" {
					in.ManifestsDir = writeManifests(dir, true)
				}
				_, err := uc.Deploy(ctx, in)
				Expect(err).To(MatchError(target))
				Expect(connects).To(BeZero())
				Expect(cs.Actions()).To(BeEmpty())
			},
			Entry("missing manifests", &locust.DeployInput{Locustfile: "-"}, locust.ErrInvalidInput),
			Entry("negative workers", &locust.DeployInput{Locustfile: "-", ManifestsDir: "-", WorkerReplicas: -1}, locust.ErrInvalidInput),
			Entry("missing locustfile", &locust.DeployInput{Locustfile: "/does/not/exist.py", ManifestsDir: "-"}, locust.ErrInvalidInput),
			Entry("unknown storage", &locust.DeployInput{Locustfile: "-", ManifestsDir: "-", Storage: "gcs"}, storage.ErrUnknownMethod),
			Entry("s3 without key", &locust.DeployInput{Locustfile: "-", ManifestsDir: "-", Storage: "s3", Bucket: "b"}, storage.ErrInvalidOptions),
			Entry("configmap with bucket", &locust.DeployInput{Locustfile: "-", ManifestsDir: "-", Bucket: "b"}, storage.ErrInvalidOptions),
			Entry("empty manifests dir", &locust.DeployInput{Locustfile: "-", ManifestsDir: "/does/not/exist"}, manifest.ErrManifestsNotFound),
		)

		It("aborts on the first failed create", func() {
			cs.PrependReactor("create", "services", func(k8stesting.Action) (bool, runtime.Object, error) {
				return true, nil, apierrors.NewForbidden(corev1.Resource("services"), "locust", errors.New("denied"))
			})
			_, err := uc.Deploy(ctx, &locust.DeployInput{Locustfile: locustfile, ManifestsDir: writeManifests(dir, true)})
			var re *kube.ResourceError
			Expect(errors.As(err, &re)).To(BeTrue())
			Expect(re.Kind).To(Equal("Service"))
			Expect(kubetest.CountActions(cs, "create", "ingresses")).To(BeZero())
		})

		It("does not create the worker when the controller never becomes ready", func() {
			kc, cs = kubetest.NewClient()
			uc.Connect = kubetest.Connector(kc, nil)
			_, err := uc.Deploy(ctx, &locust.DeployInput{Locustfile: locustfile, ManifestsDir: writeManifests(dir, true)})
			Expect(err).To(MatchError(poll.ErrExhausted))
			Expect(kubetest.CountActions(cs, "create", "deployments")).To(Equal(1))
		})

		It("deploys an ingress without host and reports no dashboard URL", func() {
			manifests := writeManifests(dir, true)
			hostless := strings.Replace(ingressYAML, "  - host: locust.example.org\n", "  - http:\n      paths: []\n", 1)
			Expect(os.WriteFile(filepath.Join(manifests, "ingress.yaml"), []byte(hostless), 0o644)).To(Succeed())

			out, err := uc.Deploy(ctx, &locust.DeployInput{Locustfile: locustfile, ManifestsDir: manifests})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.DashboardURL).To(BeEmpty())
			Expect(kubetest.CountActions(cs, "create", "ingresses")).To(Equal(1))
		})

		It("applies configured timeouts to connected clients", func() {
			pod := kubetest.ReadyPod("load", "locust-controller-0", controllerLabels)
			pod.Status.ContainerStatuses[0].Ready = false
			cs = fake.NewSimpleClientset(pod)
			uc.Connect = kubetest.Connector(kube.NewClient(cs, nil), nil)
			uc.Timeouts = zeltcfg.DefaultTimeouts().
				WithPollInterval(kubetest.FastWaits.Interval).
				WithPodReadyTimeout(kubetest.FastWaits.PodReadyTimeout).
				WithPodListTimeout(kubetest.FastWaits.PodListTimeout)

			_, err := uc.Deploy(ctx, &locust.DeployInput{Locustfile: locustfile, ManifestsDir: writeManifests(dir, false)})
			Expect(err).To(MatchError(kube.ErrPodNotReady))
		})
	})

	Describe("CreateResources", func() {
		It("checks every manifest before the first cluster call", func() {
			manifests := writeManifests(dir, true)
			noNamespace := strings.Replace(workerYAML, "  namespace: load\n", "", 1)
			Expect(os.WriteFile(filepath.Join(manifests, "worker.yaml"), []byte(noNamespace), 0o644)).To(Succeed())

			set, err := manifest.FromDirectory(ctx, manifests)
			Expect(err).NotTo(HaveOccurred())
			store, err := storage.MethodConfigMap.Build(storage.BuildInput{Set: set, Connect: uc.Connect})
			Expect(err).NotTo(HaveOccurred())

			err = uc.CreateResources(ctx, set, store, locustfile)
			Expect(err).To(MatchError(manifest.ErrInvalidManifest))
			Expect(err.Error()).To(ContainSubstring("worker deployment"))
			Expect(connects).To(BeZero())
			Expect(cs.Actions()).To(BeEmpty())
		})

		DescribeTable("names the manifest lacking a name",
			func(file, content, role string) {
				manifests := writeManifests(dir, true)
				Expect(os.WriteFile(filepath.Join(manifests, file), []byte(strings.Replace(content, "  name: ", "  title: ", 1)), 0o644)).To(Succeed())
				set, err := manifest.FromDirectory(ctx, manifests)
				Expect(err).NotTo(HaveOccurred())

				err = uc.CreateResources(ctx, set, &storage.S3{Bucket: "b", Key: "k", API: &fakeObjectAPI{puts: map[string]string{}}}, locustfile)
				Expect(err).To(MatchError(manifest.ErrInvalidManifest))
				Expect(err.Error()).To(HavePrefix(role + ":"))
				Expect(cs.Actions()).To(BeEmpty())
			},
			Entry("service", "service.yaml", serviceYAML, "service"),
			Entry("ingress", "ingress.yaml", ingressYAML, "ingress"),
			Entry("worker", "worker.yaml", workerYAML, "worker deployment"),
		)
	})

	Describe("Rescale", func() {
		It("fails on a negative count before reading manifests", func() {
			_, err := uc.Rescale(ctx, &locust.RescaleInput{ManifestsDir: filepath.Join(dir, "missing"), WorkerReplicas: -1})
			Expect(err).To(MatchError(locust.ErrInvalidInput))
			Expect(connects).To(BeZero())
		})

		It("does nothing without a worker manifest", func() {
			out, err := uc.Rescale(ctx, &locust.RescaleInput{ManifestsDir: writeManifests(dir, false), WorkerReplicas: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Rescaled).To(BeFalse())
			Expect(connects).To(BeZero())
			Expect(cs.Actions()).To(BeEmpty())
		})

		It("replaces the live worker deployment with the new replica count", func() {
			one := int32(1)
			_, err := cs.AppsV1().Deployments("load").Create(ctx, &appsv1.Deployment{
				ObjectMeta: metav1.ObjectMeta{Name: "locust-worker", Namespace: "load"},
				Spec:       appsv1.DeploymentSpec{Replicas: &one},
			}, metav1.CreateOptions{})
			Expect(err).NotTo(HaveOccurred())

			out, err := uc.Rescale(ctx, &locust.RescaleInput{ManifestsDir: writeManifests(dir, true), WorkerReplicas: 6})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Rescaled).To(BeTrue())

			d, err := cs.AppsV1().Deployments("load").Get(ctx, "locust-worker", metav1.GetOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(*d.Spec.Replicas).To(Equal(int32(6)))
			Expect(kubetest.CountActions(cs, "update", "deployments")).To(Equal(1))
		})

		It("surfaces a missing live deployment", func() {
			_, err := uc.Rescale(ctx, &locust.RescaleInput{ManifestsDir: writeManifests(dir, true), WorkerReplicas: 2})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("deletes every resource in order", func() {
			objs := []runtime.Object{
				&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "load"}},
				&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: storage.ConfigMapName, Namespace: "load"}},
				&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "locust", Namespace: "load"}},
				&networkingv1.Ingress{ObjectMeta: metav1.ObjectMeta{Name: "locust", Namespace: "load"}},
				&appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: "locust-controller", Namespace: "load"}},
				&appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: "locust-worker", Namespace: "load"}},
			}
			kc, cs = kubetest.NewClient(objs...)
			uc.Connect = kubetest.Connector(kc, nil)

			_, err := uc.Delete(ctx, &locust.DeleteInput{ManifestsDir: writeManifests(dir, true)})
			Expect(err).NotTo(HaveOccurred())

			var order []string
			for _, a := range cs.Actions() {
				if a.GetVerb() == "delete" || a.GetVerb() == "delete-collection" {
					order = append(order, a.GetResource().Resource)
				}
			}
			Expect(order).To(Equal([]string{"configmaps", "ingresses", "services", "deployments", "namespaces"}))

			l, err := cs.AppsV1().Deployments("load").List(ctx, metav1.ListOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Items).To(BeEmpty())
			_, err = cs.CoreV1().Namespaces().Get(ctx, "load", metav1.GetOptions{})
			Expect(apierrors.IsNotFound(err)).To(BeTrue())
		})

		It("treats already deleted resources as success without waiting", func() {
			_, err := uc.Delete(ctx, &locust.DeleteInput{ManifestsDir: writeManifests(dir, true)})
			Expect(err).NotTo(HaveOccurred())
			Expect(kubetest.CountActions(cs, "list", "services")).To(BeZero())
			Expect(kubetest.CountActions(cs, "list", "ingresses")).To(BeZero())
			Expect(kubetest.CountActions(cs, "get", "namespaces")).To(BeZero())
			Expect(kubetest.CountActions(cs, "get", "configmaps")).To(BeZero())
		})

		It("requires a manifests directory", func() {
			_, err := uc.Delete(ctx, &locust.DeleteInput{})
			Expect(err).To(MatchError(locust.ErrInvalidInput))
		})
	})
})
